package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/domain/exchange"
	"github.com/ndstyle/mindflow2/domain/services"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

func sampleMap(t *testing.T) *aggregates.MindMap {
	t.Helper()
	m := aggregates.NewDefaultMindMap()
	m.SetMetadata(aggregates.Metadata{Title: "Plans & <ideas>", Description: "d"})
	root := m.Nodes()[0].ID()
	pos := valueobjects.MustPosition(100, 120)
	child := m.AddNode(`Child "one" & <two>`, &pos)
	_, err := m.Connect(root, child.ID())
	require.NoError(t, err)
	return m
}

func TestToJSON(t *testing.T) {
	m := sampleMap(t)

	out, err := ToJSON(m)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{\n  \"nodes\": ["))
	var doc exchange.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Nodes, 2)
	assert.Equal(t, "Plans & <ideas>", doc.Metadata.Title)

	again, err := ToJSON(m)
	require.NoError(t, err)
	assert.Equal(t, out, again, "output is stable")
}

func TestToJSON_EmptyMapUsesArrays(t *testing.T) {
	out, err := ToJSON(aggregates.NewMindMap(aggregates.Metadata{}))
	require.NoError(t, err)
	assert.Contains(t, out, `"nodes": []`)
	assert.Contains(t, out, `"edges": []`)
	assert.Contains(t, out, `"metadata": {}`)
}

func TestToJSON_RoundTripsThroughNormalize(t *testing.T) {
	m := sampleMap(t)
	out, err := ToJSON(m)
	require.NoError(t, err)

	back, _, err := services.NewNormalizer().NormalizeJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, exchange.FromMindMap(m), exchange.FromMindMap(back))
}

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "mindmap-1700000000123.svg", Filename("svg", at))
}

func TestShareableLink_RoundTrip(t *testing.T) {
	m := sampleMap(t)

	link, err := ToShareableLink(m, "https://mindflow.example.com/app/", 0)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/app/map/temp", u.Path)
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, `"`)

	payload, err := SharePayload(link)
	require.NoError(t, err)
	back, _, err := services.NewNormalizer().NormalizeJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, exchange.FromMindMap(m), exchange.FromMindMap(back))
}

func TestShareableLink_DecodesAsURIComponent(t *testing.T) {
	m := sampleMap(t)
	m.AddNode("a + b = c", nil)

	link, err := ToShareableLink(m, "https://mindflow.example.com", 0)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	raw, found := strings.CutPrefix(u.RawQuery, ShareParam+"=")
	require.True(t, found)
	assert.NotContains(t, raw, "+")

	decoded, err := url.PathUnescape(raw)
	require.NoError(t, err)
	assert.Contains(t, decoded, `"Main Topic"`)
	assert.Contains(t, decoded, `"a + b = c"`)

	back, _, err := services.NewNormalizer().NormalizeJSON([]byte(decoded))
	require.NoError(t, err)
	assert.Equal(t, exchange.FromMindMap(m), exchange.FromMindMap(back))
}

func TestShareableLink_Errors(t *testing.T) {
	m := sampleMap(t)

	_, err := ToShareableLink(m, "not-absolute", 0)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = ToShareableLink(m, "https://x.io", 20)
	assert.True(t, pkgerrors.IsExportFailure(err))

	_, err = SharePayload("https://x.io/map/temp")
	assert.True(t, pkgerrors.IsMalformedInput(err))
}

func TestToVectorMarkup(t *testing.T) {
	m := sampleMap(t)

	svg := ToVectorMarkup(m)

	assert.True(t, strings.HasPrefix(svg, `<svg width="1200" height="800"`))
	assert.True(t, strings.HasSuffix(svg, `</svg>`))
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Equal(t, 1, strings.Count(svg, "<line"))
	// The child at (100,120) is the top-left corner of the map, so it lands
	// at padding plus radius and the root at (400,300) keeps its offset.
	assert.Contains(t, svg, `<circle cx="80" cy="80"`)
	assert.Contains(t, svg, `<circle cx="380" cy="260"`)
	assert.Contains(t, svg, `x1="380" y1="260" x2="80" y2="80"`)
	assert.Contains(t, svg, "Child &#34;one&#34; &amp; &lt;two&gt;")
	assert.NotContains(t, svg, "<two>")
	assert.Less(t, strings.Index(svg, "<line"), strings.Index(svg, "<circle"))
}

func TestBuildScene_GrowsToFit(t *testing.T) {
	m := aggregates.NewMindMap(aggregates.Metadata{})
	near := valueobjects.MustPosition(0, 50)
	far := valueobjects.MustPosition(2000, 50)
	m.AddNode("near", &near)
	m.AddNode("far", &far)

	s := BuildScene(m)
	assert.Equal(t, 2000+2*(scenePadding+nodeRadius), s.Width)
	assert.Equal(t, minSceneHeight, s.Height)
}

func TestBuildScene_TranslatesToBoundingBox(t *testing.T) {
	m := aggregates.NewMindMap(aggregates.Metadata{})
	neg := valueobjects.MustPosition(-300, -200)
	far := valueobjects.MustPosition(50000, 50000)
	a := m.AddNode("negative", &neg)
	m.AddNode("far", &far)

	s := BuildScene(m)
	assert.Equal(t, scenePadding+nodeRadius, s.Nodes[0].X)
	assert.Equal(t, scenePadding+nodeRadius, s.Nodes[0].Y)
	assert.Equal(t, a.ID().String(), s.Nodes[0].ID)
	assert.Equal(t, 50300+scenePadding+nodeRadius, s.Nodes[1].X)

	lonely := aggregates.NewMindMap(aggregates.Metadata{})
	lonely.AddNode("far", &far)
	s = BuildScene(lonely)
	assert.Equal(t, minSceneWidth, s.Width)
	assert.Equal(t, minSceneHeight, s.Height)
	assert.Equal(t, scenePadding+nodeRadius, s.Nodes[0].X)
}

func TestBuildScene_UsesHexColors(t *testing.T) {
	out, _, err := services.NewNormalizer().NormalizeJSON([]byte(
		`{"nodes":[{"id":"a","color":"#ff0000"},{"id":"b","color":"red"}]}`))
	require.NoError(t, err)

	s := BuildScene(out)
	assert.Equal(t, "#ff0000", s.Nodes[0].Fill)
	assert.Equal(t, nodeFill, s.Nodes[1].Fill)
}

func TestPNGCapturer(t *testing.T) {
	m := sampleMap(t)
	data, err := NewPNGCapturer(1).Capture(context.Background(), BuildScene(m))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())

	assert.Equal(t, 800, img.Bounds().Dy())

	// Root disc is centred on (380,260); its label sits on the centre line.
	r, g, b, _ := img.At(380, 240).RGBA()
	assert.Equal(t, uint32(0x3b), r>>8)
	assert.Equal(t, uint32(0x82), g>>8)
	assert.Equal(t, uint32(0xf6), b>>8)

	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Zero(t, r+g+b)

	labelled := false
	for y := 250; y <= 270 && !labelled; y++ {
		for x := 350; x <= 410; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r>>8 > 0xc0 {
				labelled = true
				break
			}
		}
	}
	assert.True(t, labelled, "expected label pixels inside the root disc")
}

func TestPNGCapturer_LimitsBitmapSize(t *testing.T) {
	t.Run("large scene is scaled down", func(t *testing.T) {
		m := aggregates.NewMindMap(aggregates.Metadata{})
		left := valueobjects.MustPosition(0, 0)
		right := valueobjects.MustPosition(6000, 0)
		m.AddNode("left", &left)
		m.AddNode("right", &right)

		data, err := NewPNGCapturer(2).Capture(context.Background(), BuildScene(m))
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx()*img.Bounds().Dy(), maxRasterPixels)
		assert.Greater(t, img.Bounds().Dx(), 6000)
	})

	t.Run("far apart nodes are refused", func(t *testing.T) {
		m := aggregates.NewMindMap(aggregates.Metadata{})
		neg := valueobjects.MustPosition(-500, -500)
		far := valueobjects.MustPosition(50000, 50000)
		m.AddNode("negative", &neg)
		m.AddNode("far", &far)

		_, err := NewRasterExporter(NewPNGCapturer(2)).Export(context.Background(), m)
		assert.True(t, pkgerrors.IsExportFailure(err))
	})

	t.Run("a single far node renders at normal size", func(t *testing.T) {
		m := aggregates.NewMindMap(aggregates.Metadata{})
		far := valueobjects.MustPosition(50000, 50000)
		m.AddNode("far", &far)

		data, err := NewPNGCapturer(1).Capture(context.Background(), BuildScene(m))
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 1200, img.Bounds().Dx())
		assert.Equal(t, 800, img.Bounds().Dy())
	})
}

func TestRasterExporter(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := sampleMap(t)
		exp := NewRasterExporter(nil)

		data, err := exp.Export(context.Background(), m)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	})

	t.Run("capturer error is non fatal", func(t *testing.T) {
		m := sampleMap(t)
		before, _ := ToJSON(m)
		exp := NewRasterExporter(CapturerFunc(func(context.Context, Scene) ([]byte, error) {
			return nil, errors.New("canvas tainted")
		}))

		res := <-exp.ExportAsync(context.Background(), m)

		assert.True(t, pkgerrors.IsExportFailure(res.Err))
		after, _ := ToJSON(m)
		assert.Equal(t, before, after)
	})

	t.Run("capturer panic", func(t *testing.T) {
		exp := NewRasterExporter(CapturerFunc(func(context.Context, Scene) ([]byte, error) {
			panic("boom")
		}))
		_, err := exp.Export(context.Background(), sampleMap(t))
		assert.True(t, pkgerrors.IsExportFailure(err))
	})

	t.Run("empty output", func(t *testing.T) {
		exp := NewRasterExporter(CapturerFunc(func(context.Context, Scene) ([]byte, error) {
			return nil, nil
		}))
		_, err := exp.Export(context.Background(), sampleMap(t))
		assert.True(t, pkgerrors.IsExportFailure(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		exp := NewRasterExporter(CapturerFunc(func(ctx context.Context, _ Scene) ([]byte, error) {
			<-block
			return []byte{1}, nil
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := exp.Export(ctx, sampleMap(t))
		assert.True(t, pkgerrors.IsExportFailure(err))
	})
}
