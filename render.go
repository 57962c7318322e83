package diffeq

import (
	"encoding/base64"

	"github.com/njchilds90/diffeq/render"
)

// RenderPlot draws the proposed solution of de as a PNG. It always returns
// an image: failures are drawn as text.
func RenderPlot(de, solution string) []byte {
	return render.Solution(de, solution)
}

// PlotDataURI wraps a PNG in a data URI suitable for an <img> src.
func PlotDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
