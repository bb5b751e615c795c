package export

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// Capturer turns a visual render into image bytes. Browser hosts inject a
// DOM rasterizer; the server uses PNGCapturer.
type Capturer interface {
	Capture(ctx context.Context, scene Scene) ([]byte, error)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(ctx context.Context, scene Scene) ([]byte, error)

func (f CapturerFunc) Capture(ctx context.Context, scene Scene) ([]byte, error) {
	return f(ctx, scene)
}

// RasterResult is delivered once per export.
type RasterResult struct {
	Data []byte
	Err  error
}

// RasterExporter runs captures off the caller's goroutine. The capture works
// on a scene built before the goroutine starts, so the live map is never
// touched by the renderer.
type RasterExporter struct {
	capturer Capturer
}

func NewRasterExporter(capturer Capturer) *RasterExporter {
	if capturer == nil {
		capturer = NewPNGCapturer(2)
	}
	return &RasterExporter{capturer: capturer}
}

// ExportAsync starts a capture and returns a channel that receives exactly
// one result. Failures, including panics in the capturer, arrive as
// EXPORT_FAILURE errors.
func (e *RasterExporter) ExportAsync(ctx context.Context, m *aggregates.MindMap) <-chan RasterResult {
	scene := BuildScene(m)
	out := make(chan RasterResult, 1)

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				out <- RasterResult{Err: pkgerrors.NewExportFailureError("png", fmt.Errorf("capturer panic: %v", r))}
			}
		}()

		data, err := e.capturer.Capture(ctx, scene)
		switch {
		case err != nil:
			out <- RasterResult{Err: pkgerrors.NewExportFailureError("png", err)}
		case len(data) == 0:
			out <- RasterResult{Err: pkgerrors.NewExportFailureError("png", fmt.Errorf("capturer returned no data"))}
		default:
			out <- RasterResult{Data: data}
		}
	}()
	return out
}

// Export waits for ExportAsync or for ctx to end.
func (e *RasterExporter) Export(ctx context.Context, m *aggregates.MindMap) ([]byte, error) {
	select {
	case res := <-e.ExportAsync(ctx, m):
		return res.Data, res.Err
	case <-ctx.Done():
		return nil, pkgerrors.NewExportFailureError("png", ctx.Err())
	}
}

const (
	// maxRasterPixels bounds the bitmap a single export may allocate.
	maxRasterPixels = 4096 * 4096
	// minRasterScale is the smallest scale a large scene is shrunk to before
	// the export is refused.
	minRasterScale = 0.1

	labelFontSize = 12.0
)

var (
	labelFont     *opentype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

func loadLabelFont() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// PNGCapturer draws a scene with gg: edges, then node discs with their
// labels on top.
type PNGCapturer struct {
	scale float64
}

func NewPNGCapturer(scale float64) *PNGCapturer {
	if scale <= 0 {
		scale = 1
	}
	return &PNGCapturer{scale: scale}
}

// rasterScale returns the scale to draw s at, shrinking the configured
// scale when the bitmap would exceed maxRasterPixels.
func (p *PNGCapturer) rasterScale(s Scene) (float64, error) {
	area := s.Width * s.Height
	if math.IsNaN(area) || math.IsInf(area, 0) || s.Width <= 0 || s.Height <= 0 {
		return 0, fmt.Errorf("invalid canvas size %vx%v", s.Width, s.Height)
	}
	scale := p.scale
	if area*scale*scale > maxRasterPixels {
		scale = math.Sqrt(maxRasterPixels / area)
	}
	if scale < minRasterScale {
		return 0, fmt.Errorf("canvas %.0fx%.0f is too large to rasterize", s.Width, s.Height)
	}
	return scale, nil
}

func (p *PNGCapturer) Capture(ctx context.Context, s Scene) ([]byte, error) {
	scale, err := p.rasterScale(s)
	if err != nil {
		return nil, err
	}
	w := int(math.Floor(s.Width * scale))
	h := int(math.Floor(s.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	f, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    labelFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label face: %w", err)
	}
	defer face.Close()

	dc := gg.NewContext(w, h)
	dc.SetHexColor(s.Background)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetLineWidth(2 * scale)

	for _, e := range s.Edges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dc.SetHexColor(e.Stroke)
		dc.DrawLine(e.X1*scale, e.Y1*scale, e.X2*scale, e.Y2*scale)
		dc.Stroke()
	}

	for _, n := range s.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, y := n.X*scale, n.Y*scale
		dc.DrawCircle(x, y, n.Radius*scale)
		dc.SetHexColor(n.Fill)
		dc.FillPreserve()
		dc.SetHexColor(n.Stroke)
		dc.Stroke()

		dc.SetHexColor(labelColor)
		dc.DrawStringAnchored(n.Label, x, y, 0.5, 0.35)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
