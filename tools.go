package diffeq

import (
	"encoding/json"
	"fmt"

	"github.com/njchilds90/diffeq/expr"
)

// ============================================================
// Tool Interface
// ============================================================

// ToolRequest names one operation and its parameters, as sent by agents
// and the "tool" command.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches req to the matching analysis function.
// Unknown tools and malformed parameters produce a response with Error set.
func HandleToolCall(req ToolRequest) (resp ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = ToolResponse{Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string, def int) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(f), nil
	}
	getPair := func() (string, string, error) {
		de, err := getString("de")
		if err != nil {
			return "", "", err
		}
		sol, err := getString("solution")
		if err != nil {
			return "", "", err
		}
		return de, sol, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "classify_linearity":
		eq, err := getString("equation")
		if err != nil {
			return fail(err)
		}
		linear := ClassifyLinearity(eq)
		s := "not linear"
		if linear {
			s = "linear"
		}
		return ToolResponse{Result: linear, String: s}

	case "check_linearity":
		eq, err := getString("equation")
		if err != nil {
			return fail(err)
		}
		res := CheckLinearity(eq)
		return ToolResponse{Result: res, String: res.Reason}

	case "verify_solution":
		de, sol, err := getPair()
		if err != nil {
			return fail(err)
		}
		res := VerifySolution(de, sol)
		return ToolResponse{Result: res, String: res.Reason}

	case "render_plot":
		de, sol, err := getPair()
		if err != nil {
			return fail(err)
		}
		uri := PlotDataURI(RenderPlot(de, sol))
		return ToolResponse{Result: map[string]string{"plot_url": uri}}

	case "normalize":
		eq, err := getString("equation")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: Normalize(eq), String: Normalize(eq)}

	case "detect_nonlinear":
		eq, err := getString("equation")
		if err != nil {
			return fail(err)
		}
		p, found := DetectNonlinear(eq)
		return ToolResponse{Result: map[string]interface{}{"found": found, "pattern": p}, String: p}

	case "simplify":
		src, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		e, err := expr.Parse(src, expr.WithFunction(FuncName, VarName))
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: e.String(), String: e.String()}

	case "diff":
		src, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		n, err := getInt("n", 1)
		if err != nil {
			return fail(err)
		}
		if n < 0 {
			return fail(fmt.Errorf("param n must not be negative"))
		}
		e, err := expr.Parse(src, expr.WithFunction(FuncName, VarName))
		if err != nil {
			return fail(err)
		}
		d := expr.DiffN(e, VarName, n)
		return ToolResponse{Result: d.String(), String: d.String()}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec()), String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	eq := map[string]string{"equation": "string"}
	pair := map[string]string{"de": "string", "solution": "string"}
	tools := []map[string]interface{}{
		ts("classify_linearity", "Report whether an ODE in y(x) is linear", []string{"equation"}, eq),
		ts("check_linearity", "Classify an ODE and explain which stage decided", []string{"equation"}, eq),
		ts("verify_solution", "Check a proposed solution 'y = f(x)' numerically", []string{"de", "solution"}, pair),
		ts("render_plot", "Plot a proposed solution as a PNG data URI", []string{"de", "solution"}, pair),
		ts("normalize", "Rewrite an equation as 'lhs - (rhs) = 0'", []string{"equation"}, eq),
		ts("detect_nonlinear", "Find the first textual non-linear pattern", []string{"equation"}, eq),
		ts("simplify", "Parse and simplify an expression in x, y, y', y''", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("diff", "n-th derivative with respect to x (n defaults to 1)", []string{"expr"}, map[string]string{"expr": "string", "n": "integer"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
