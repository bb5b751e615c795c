package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/domain/events"
	domain "github.com/ndstyle/mindflow2/domain/services"
	"github.com/ndstyle/mindflow2/infrastructure/export"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, ownerID string, mm *aggregates.MindMap, title, description string) (string, error) {
	args := m.Called(ctx, ownerID, mm, title, description)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Load(ctx context.Context, id string) (*ports.StoredMindMap, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.StoredMindMap), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, ownerID string) ([]ports.Summary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]ports.Summary), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, notes string) (string, error) {
	args := m.Called(ctx, notes)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	return m.Called(ctx, evts).Error(0)
}

var (
	owner    = auth.Session{UserID: "owner-1"}
	stranger = auth.Session{UserID: "someone-else"}
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(store ports.MindMapStore, gen ports.Generator, pub ports.EventPublisher, opts ...Option) *MindMapService {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewMindMapService(store, gen, pub, "https://mindflow.test", zap.NewNop(), opts...)
}

func storedMap(t *testing.T, ownerID string) *ports.StoredMindMap {
	t.Helper()
	m := aggregates.NewDefaultMindMap()
	child := m.AddNode("Child", nil)
	_, err := m.Connect(m.Nodes()[0].ID(), child.ID())
	require.NoError(t, err)
	m.PullEvents()
	return &ports.StoredMindMap{ID: "map-1", OwnerID: ownerID, Title: "Plans", MindMap: m}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		genErr       error
		wantFallback bool
		wantNodes    int
		wantTitle    string
	}{
		{
			name:      "fenced json",
			response:  "Here you go:\n```json\n{\"nodes\":[{\"id\":\"1\",\"label\":\"Go\"},{\"id\":\"2\",\"label\":\"Chans\"}],\"edges\":[{\"source\":\"1\",\"target\":\"2\"}],\"metadata\":{\"title\":\"Go\"}}\n```",
			wantNodes: 2,
			wantTitle: "Go",
		},
		{
			name:      "missing metadata gets defaults",
			response:  `{"nodes":[{"label":"Only"}]}`,
			wantNodes: 1,
			wantTitle: domain.FallbackTitle,
		},
		{
			name:         "unparsable output falls back to notes",
			response:     "I cannot help with that {",
			wantFallback: true,
			wantNodes:    3,
			wantTitle:    domain.FallbackTitle,
		},
		{
			name:         "generator error falls back",
			genErr:       errors.New("rate limited"),
			wantFallback: true,
			wantNodes:    2,
			wantTitle:    domain.FallbackTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			gen := new(MockGenerator)
			gen.On("Generate", mock.Anything, "line one\nline two").Return(tt.response, tt.genErr)
			svc := newTestService(new(MockStore), gen, nil)

			// Act
			res, err := svc.Generate(context.Background(), "line one\nline two")

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantFallback, res.Fallback)
			assert.Equal(t, tt.wantNodes, res.MindMap.NodeCount())
			assert.Equal(t, tt.wantTitle, res.MindMap.Metadata().Title)
			assert.NoError(t, res.MindMap.Validate())
			assert.Empty(t, res.MindMap.PullEvents())
			gen.AssertExpectations(t)
		})
	}
}

func TestGenerate_RejectsBadNotes(t *testing.T) {
	gen := new(MockGenerator)
	svc := newTestService(new(MockStore), gen, nil, WithLimits(func() Limits {
		return Limits{MaxNotesLength: 5}
	}))

	_, err := svc.Generate(context.Background(), "   ")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.Generate(context.Background(), "far too long")
	assert.True(t, pkgerrors.IsValidation(err))

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestImportAndAnalyzeJSON(t *testing.T) {
	svc := newTestService(new(MockStore), new(MockGenerator), nil)

	_, err := svc.Import(context.Background(), []byte(`{"nodes":`))
	assert.True(t, pkgerrors.IsMalformedInput(err))

	result, err := svc.AnalyzeJSON(context.Background(), []byte(`{"nodes":[{"label":"Root"}],"edges":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalNodes)
	assert.Equal(t, 1, result.MaxDepth)
	assert.Equal(t, domain.ComplexityLow, result.Complexity)
}

func TestSave(t *testing.T) {
	t.Run("stores and publishes", func(t *testing.T) {
		// Arrange
		store := new(MockStore)
		pub := new(MockPublisher)
		m := aggregates.NewDefaultMindMap()
		m.AddNode("Idea", nil)
		store.On("Save", mock.Anything, "owner-1", m, "Plans", "desc").Return("map-9", nil)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(evts []events.DomainEvent) bool {
			return len(evts) == 2 && evts[1].GetEventType() == events.TypeMindMapSaved
		})).Return(nil)
		svc := newTestService(store, new(MockGenerator), pub)

		// Act
		id, err := svc.Save(context.Background(), owner, m, "  Plans ", "desc")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "map-9", id)
		assert.Equal(t, "map-9", m.ID())
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("publisher failure is not fatal", func(t *testing.T) {
		store := new(MockStore)
		pub := new(MockPublisher)
		store.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("map-1", nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))
		svc := newTestService(store, new(MockGenerator), pub)

		_, err := svc.Save(context.Background(), owner, aggregates.NewDefaultMindMap(), "t", "")
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		store := new(MockStore)
		svc := newTestService(store, new(MockGenerator), nil, WithLimits(func() Limits {
			return Limits{MaxNodes: 1}
		}))
		big := aggregates.NewDefaultMindMap()
		big.AddNode("second", nil)

		_, err := svc.Save(context.Background(), auth.Anonymous, big, "t", "")
		assert.True(t, pkgerrors.IsUnauthorized(err))

		_, err = svc.Save(context.Background(), owner, big, "  ", "")
		assert.True(t, pkgerrors.IsValidation(err))

		_, err = svc.Save(context.Background(), owner, big, "t", "")
		assert.True(t, pkgerrors.IsValidation(err))

		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGet_Ownership(t *testing.T) {
	store := new(MockStore)
	store.On("Load", mock.Anything, "map-1").Return(storedMap(t, "owner-1"), nil)
	store.On("Load", mock.Anything, "missing").Return(nil, pkgerrors.NewNotFoundError("mind map"))
	svc := newTestService(store, new(MockGenerator), nil)

	doc, err := svc.Get(context.Background(), owner, "map-1")
	require.NoError(t, err)
	assert.Equal(t, "Plans", doc.Title)

	_, err = svc.Get(context.Background(), stranger, "map-1")
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = svc.Get(context.Background(), owner, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEdit(t *testing.T) {
	t.Run("applies and saves", func(t *testing.T) {
		// Arrange
		store := new(MockStore)
		doc := storedMap(t, "owner-1")
		store.On("Load", mock.Anything, "map-1").Return(doc, nil)
		store.On("Save", mock.Anything, "owner-1", doc.MindMap, "Plans", "").Return("map-1", nil)
		svc := newTestService(store, new(MockGenerator), nil)

		// Act
		out, err := svc.Edit(context.Background(), owner, "map-1", func(m *aggregates.MindMap) error {
			m.AddNode("New", nil)
			return nil
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, out.MindMap.NodeCount())
		assert.Equal(t, fixedNow, out.UpdatedAt)
		store.AssertExpectations(t)
	})

	t.Run("failed mutation writes nothing", func(t *testing.T) {
		store := new(MockStore)
		doc := storedMap(t, "owner-1")
		store.On("Load", mock.Anything, "map-1").Return(doc, nil)
		svc := newTestService(store, new(MockGenerator), nil)

		_, err := svc.Edit(context.Background(), owner, "map-1", func(m *aggregates.MindMap) error {
			missing, _ := valueobjects.NewNodeID("missing")
			_, err := m.Connect(m.Nodes()[0].ID(), missing)
			return err
		})

		assert.True(t, pkgerrors.IsInvalidReference(err))
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no-op mutation writes nothing", func(t *testing.T) {
		store := new(MockStore)
		store.On("Load", mock.Anything, "map-1").Return(storedMap(t, "owner-1"), nil)
		svc := newTestService(store, new(MockGenerator), nil)

		_, err := svc.Edit(context.Background(), owner, "map-1", func(m *aggregates.MindMap) error {
			missing, _ := valueobjects.NewNodeID("missing")
			m.RemoveNode(missing)
			return nil
		})

		require.NoError(t, err)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stranger cannot edit", func(t *testing.T) {
		store := new(MockStore)
		store.On("Load", mock.Anything, "map-1").Return(storedMap(t, "owner-1"), nil)
		svc := newTestService(store, new(MockGenerator), nil)

		_, err := svc.Edit(context.Background(), stranger, "map-1", func(*aggregates.MindMap) error { return nil })
		assert.True(t, pkgerrors.IsForbidden(err))
	})
}

func TestListAndDelete(t *testing.T) {
	store := new(MockStore)
	pub := new(MockPublisher)
	summaries := []ports.Summary{{ID: "b", Title: "B"}, {ID: "a", Title: "A"}}
	store.On("List", mock.Anything, "owner-1").Return(summaries, nil)
	store.On("Delete", mock.Anything, "a", "owner-1").Return(nil)
	store.On("Delete", mock.Anything, "a", "someone-else").Return(pkgerrors.NewForbiddenError(""))
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(store, new(MockGenerator), pub)

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, summaries, list)

	require.NoError(t, svc.Delete(context.Background(), owner, "a"))
	assert.True(t, pkgerrors.IsForbidden(svc.Delete(context.Background(), stranger, "a")))
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestExport(t *testing.T) {
	m := storedMap(t, "owner-1").MindMap
	svc := newTestService(new(MockStore), new(MockGenerator), nil)

	for _, format := range []string{FormatJSON, FormatSVG, FormatPNG} {
		res, err := svc.Export(context.Background(), m, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, res.Data)
		assert.Equal(t, "mindmap-"+"1714564800000."+format, res.Filename)
	}

	_, err := svc.Export(context.Background(), m, "pdf")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestExport_RasterFailureLeavesMapIntact(t *testing.T) {
	m := storedMap(t, "owner-1").MindMap
	before := m.Version()
	failing := export.NewRasterExporter(export.CapturerFunc(func(context.Context, export.Scene) ([]byte, error) {
		return nil, errors.New("renderer crashed")
	}))
	svc := newTestService(new(MockStore), new(MockGenerator), nil, WithRasterExporter(failing))

	_, err := svc.Export(context.Background(), m, FormatPNG)

	assert.True(t, pkgerrors.IsExportFailure(err))
	assert.Equal(t, before, m.Version())
	assert.Equal(t, 2, m.NodeCount())
}

func TestShareLinkRoundTrip(t *testing.T) {
	m := storedMap(t, "owner-1").MindMap
	svc := newTestService(new(MockStore), new(MockGenerator), nil)

	link, err := svc.ShareLink(m)
	require.NoError(t, err)

	payload, err := export.SharePayload(link)
	require.NoError(t, err)
	back, err := svc.OpenShared(context.Background(), string(payload))
	require.NoError(t, err)
	assert.Equal(t, m.NodeCount(), back.NodeCount())
	assert.Equal(t, m.EdgeCount(), back.EdgeCount())

	_, err = svc.OpenShared(context.Background(), "")
	assert.True(t, pkgerrors.IsMalformedInput(err))
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, extractJSONObject("```json\n{\"a\":{\"b\":1}}\n```"))
	assert.Equal(t, "no braces", extractJSONObject("no braces"))
	assert.Equal(t, "} {", extractJSONObject("} {"))
}
