package diffeq

import "fmt"

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the JSON envelope shared by the command-line tools and the
// web endpoints.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	PlotURL string `json:"plot_url,omitempty"`
}

// ErrorResponse is a failed Response carrying msg.
func ErrorResponse(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// LinearityResponse classifies equation and phrases the verdict.
func LinearityResponse(equation string) Response {
	if ClassifyLinearity(equation) {
		return Response{Status: StatusSuccess, Message: fmt.Sprintf("The differential equation '%s' is linear.", equation)}
	}
	return Response{Status: StatusError, Message: fmt.Sprintf("The differential equation '%s' is not linear.", equation)}
}

// VerificationResponse verifies solution against de, phrases the verdict and
// attaches the plot as a data URI.
func VerificationResponse(de, solution string) Response {
	result := VerifySolution(de, solution)
	plotURL := PlotDataURI(RenderPlot(de, solution))
	if result.IsValid {
		return Response{
			Status:  StatusSuccess,
			Message: fmt.Sprintf("The function '%s' is a valid solution to the differential equation '%s'.", solution, de),
			PlotURL: plotURL,
		}
	}
	return Response{
		Status:  StatusError,
		Message: fmt.Sprintf("The function '%s' is not a valid solution to the differential equation '%s'. %s", solution, de, result.Reason),
		PlotURL: plotURL,
	}
}
