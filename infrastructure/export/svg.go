package export

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
)

// ToVectorMarkup renders a standalone SVG document. Edges are drawn first so
// node circles sit on top of them.
func ToVectorMarkup(m *aggregates.MindMap) string {
	return RenderSVG(BuildScene(m))
}

// RenderSVG writes a scene as SVG markup.
func RenderSVG(s Scene) string {
	var b strings.Builder
	b.WriteString(`<svg width="` + num(s.Width) + `" height="` + num(s.Height) +
		`" viewBox="0 0 ` + num(s.Width) + ` ` + num(s.Height) + `" xmlns="http://www.w3.org/2000/svg">`)
	b.WriteString(`<rect width="` + num(s.Width) + `" height="` + num(s.Height) + `" fill="` + s.Background + `"/>`)

	for _, e := range s.Edges {
		b.WriteString(`<line data-id="` + escape(e.ID) + `" x1="` + num(e.X1) + `" y1="` + num(e.Y1) +
			`" x2="` + num(e.X2) + `" y2="` + num(e.Y2) + `" stroke="` + e.Stroke + `" stroke-width="2"/>`)
	}

	for _, n := range s.Nodes {
		b.WriteString(`<g data-id="` + escape(n.ID) + `">`)
		b.WriteString(`<circle cx="` + num(n.X) + `" cy="` + num(n.Y) + `" r="` + num(n.Radius) +
			`" fill="` + n.Fill + `" stroke="` + n.Stroke + `" stroke-width="2"/>`)
		b.WriteString(`<text x="` + num(n.X) + `" y="` + num(n.Y+5) +
			`" text-anchor="middle" fill="` + labelColor + `" font-family="Arial" font-size="12">` +
			escape(n.Label) + `</text>`)
		b.WriteString(`</g>`)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
