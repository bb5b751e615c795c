package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/application/ports"
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	domainevents "github.com/ndstyle/mindflow2/domain/events"
	"github.com/ndstyle/mindflow2/domain/exchange"
	domain "github.com/ndstyle/mindflow2/domain/services"
	"github.com/ndstyle/mindflow2/infrastructure/export"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// generationFailedNotes seeds the fallback map when the generator itself
// failed, as opposed to returning unusable text.
const generationFailedNotes = "Notes processing failed"

var tracer = otel.Tracer("github.com/ndstyle/mindflow2/application/services")

// Limits bound user supplied sizes. They can change at runtime.
type Limits struct {
	MaxNodes          int
	MaxNotesLength    int
	MaxShareLinkBytes int
}

// DefaultLimits are used when no provider is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxNodes:          500,
		MaxNotesLength:    20000,
		MaxShareLinkBytes: 64 * 1024,
	}
}

// Recorder receives operation metrics.
type Recorder interface {
	RecordGeneration(fallback bool, duration time.Duration)
	RecordNormalization(report domain.NormalizationReport)
	RecordExport(format string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(bool, time.Duration)           {}
func (nopRecorder) RecordNormalization(domain.NormalizationReport) {}
func (nopRecorder) RecordExport(string, error)                     {}

// GenerateResult is the outcome of turning notes into a map.
type GenerateResult struct {
	MindMap  *aggregates.MindMap
	Fallback bool
	Report   domain.NormalizationReport
}

// ExportResult is a rendered file.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// MindMapService coordinates the domain core with the store, generator and
// exporters. Callers pass the acting user's auth.Session explicitly.
type MindMapService struct {
	store      ports.MindMapStore
	generator  ports.Generator
	publisher  ports.EventPublisher
	normalizer *domain.Normalizer
	analyzer   *domain.Analyzer
	raster     *export.RasterExporter
	limits     func() Limits
	shareBase  string
	recorder   Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a MindMapService.
type Option func(*MindMapService)

func WithLimits(provider func() Limits) Option {
	return func(s *MindMapService) {
		if provider != nil {
			s.limits = provider
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *MindMapService) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithRasterExporter(r *export.RasterExporter) Option {
	return func(s *MindMapService) {
		if r != nil {
			s.raster = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *MindMapService) { s.now = now }
}

// NewMindMapService creates the service. publisher may be nil.
func NewMindMapService(
	store ports.MindMapStore,
	generator ports.Generator,
	publisher ports.EventPublisher,
	shareBaseURL string,
	logger *zap.Logger,
	opts ...Option,
) *MindMapService {
	s := &MindMapService{
		store:      store,
		generator:  generator,
		publisher:  publisher,
		normalizer: domain.NewNormalizer(),
		analyzer:   domain.NewAnalyzer(),
		raster:     export.NewRasterExporter(nil),
		limits:     DefaultLimits,
		shareBase:  shareBaseURL,
		recorder:   nopRecorder{},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate asks the generator for a map. Unusable generator output never
// fails the call: it is replaced by a fallback map built from the notes.
func (s *MindMapService) Generate(ctx context.Context, notes string) (*GenerateResult, error) {
	ctx, span := tracer.Start(ctx, "MindMapService.Generate")
	defer span.End()

	if strings.TrimSpace(notes) == "" {
		return nil, pkgerrors.NewValidationError("notes are required and must be a string")
	}
	if max := s.limits().MaxNotesLength; max > 0 && len(notes) > max {
		return nil, pkgerrors.NewValidationError("notes are too long").WithDetail("max_length", max)
	}

	start := s.now()
	result := &GenerateResult{}

	text, err := s.generator.Generate(ctx, notes)
	switch {
	case err != nil:
		s.logger.Warn("Generator failed, using fallback mind map", zap.Error(err))
		span.RecordError(err)
		result.MindMap = domain.FallbackMindMap(generationFailedNotes)
		result.Fallback = true
	default:
		raw, perr := exchange.ParseUntrusted([]byte(extractJSONObject(text)))
		if perr != nil {
			s.logger.Warn("Generator returned unparsable output, using fallback mind map",
				zap.Int("response_length", len(text)),
				zap.Error(perr),
			)
			result.MindMap = domain.FallbackMindMap(notes)
			result.Fallback = true
			break
		}
		result.MindMap, result.Report = s.normalizer.Normalize(raw)
		s.logReport("generated", result.Report)
	}

	if meta := result.MindMap.Metadata(); meta.Title == "" && meta.Description == "" {
		result.MindMap.SetMetadata(aggregates.Metadata{
			Title:       domain.FallbackTitle,
			Description: domain.FallbackDescription,
		})
	}
	result.MindMap.PullEvents()

	s.recorder.RecordGeneration(result.Fallback, s.now().Sub(start))
	span.SetAttributes(
		attribute.Bool("mindmap.fallback", result.Fallback),
		attribute.Int("mindmap.nodes", result.MindMap.NodeCount()),
	)
	return result, nil
}

// Import normalizes user supplied JSON. Only syntax-invalid input fails,
// with MALFORMED_INPUT.
func (s *MindMapService) Import(ctx context.Context, data []byte) (*aggregates.MindMap, error) {
	_, span := tracer.Start(ctx, "MindMapService.Import")
	defer span.End()

	m, report, err := s.normalizer.NormalizeJSON(data)
	if err != nil {
		span.SetStatus(codes.Error, "malformed input")
		return nil, err
	}
	s.logReport("imported", report)
	return m, nil
}

// Analyze computes metrics for m.
func (s *MindMapService) Analyze(m *aggregates.MindMap) domain.AnalysisResult {
	return s.analyzer.Analyze(m)
}

// AnalyzeJSON normalizes and analyzes raw JSON in one step.
func (s *MindMapService) AnalyzeJSON(ctx context.Context, data []byte) (domain.AnalysisResult, error) {
	m, err := s.Import(ctx, data)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return s.analyzer.Analyze(m), nil
}

// Save stores m for the session's user and assigns the document id to m.
func (s *MindMapService) Save(ctx context.Context, session auth.Session, m *aggregates.MindMap, title, description string) (string, error) {
	ctx, span := tracer.Start(ctx, "MindMapService.Save")
	defer span.End()

	if err := session.RequireUser(); err != nil {
		return "", err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", pkgerrors.NewValidationError("title is required")
	}
	if err := s.checkSize(m); err != nil {
		return "", err
	}

	id, err := s.store.Save(ctx, session.UserID, m, title, description)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	m.AssignID(id)

	evts := append(m.PullEvents(), domainevents.NewMindMapSaved(id, session.UserID, title, m.NodeCount(), m.EdgeCount(), s.now()))
	s.publish(ctx, evts)

	s.logger.Info("Mind map saved",
		zap.String("mindmap_id", id),
		zap.String("user_id", session.UserID),
		zap.Int("nodes", m.NodeCount()),
		zap.Int("edges", m.EdgeCount()),
	)
	span.SetAttributes(attribute.String("mindmap.id", id))
	return id, nil
}

// Get loads a document owned by the session's user.
func (s *MindMapService) Get(ctx context.Context, session auth.Session, id string) (*ports.StoredMindMap, error) {
	ctx, span := tracer.Start(ctx, "MindMapService.Get", trace.WithAttributes(attribute.String("mindmap.id", id)))
	defer span.End()

	if err := session.RequireUser(); err != nil {
		return nil, err
	}
	doc, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Owns(doc.OwnerID) {
		return nil, pkgerrors.NewForbiddenError("mind map belongs to another user")
	}
	return doc, nil
}

// List returns the session user's documents, newest first.
func (s *MindMapService) List(ctx context.Context, session auth.Session) ([]ports.Summary, error) {
	if err := session.RequireUser(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, session.UserID)
}

// Delete removes a document owned by the session's user.
func (s *MindMapService) Delete(ctx context.Context, session auth.Session, id string) error {
	if err := session.RequireUser(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, session.UserID); err != nil {
		return err
	}
	s.publish(ctx, []domainevents.DomainEvent{domainevents.NewMindMapDeleted(id, session.UserID, s.now())})
	s.logger.Info("Mind map deleted", zap.String("mindmap_id", id), zap.String("user_id", session.UserID))
	return nil
}

// Edit loads a document, applies fn and saves the result. If fn fails
// nothing is written.
func (s *MindMapService) Edit(ctx context.Context, session auth.Session, id string, fn func(m *aggregates.MindMap) error) (*ports.StoredMindMap, error) {
	ctx, span := tracer.Start(ctx, "MindMapService.Edit", trace.WithAttributes(attribute.String("mindmap.id", id)))
	defer span.End()

	doc, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	doc.MindMap.AssignID(doc.ID)

	if err := fn(doc.MindMap); err != nil {
		return nil, err
	}
	if err := s.checkSize(doc.MindMap); err != nil {
		return nil, err
	}

	evts := doc.MindMap.PullEvents()
	if len(evts) == 0 {
		return doc, nil
	}
	if _, err := s.store.Save(ctx, session.UserID, doc.MindMap, doc.Title, doc.Description); err != nil {
		return nil, err
	}
	doc.UpdatedAt = s.now()
	s.publish(ctx, evts)
	return doc, nil
}

// Export renders m in the given format. PNG rendering runs asynchronously;
// any render failure is an EXPORT_FAILURE and m is left untouched.
func (s *MindMapService) Export(ctx context.Context, m *aggregates.MindMap, format string) (*ExportResult, error) {
	ctx, span := tracer.Start(ctx, "MindMapService.Export", trace.WithAttributes(attribute.String("export.format", format)))
	defer span.End()

	res := &ExportResult{Filename: export.Filename(format, s.now())}
	var err error
	switch format {
	case FormatJSON:
		var out string
		out, err = export.ToJSON(m)
		res.Data, res.ContentType = []byte(out), "application/json"
	case FormatSVG:
		res.Data, res.ContentType = []byte(export.ToVectorMarkup(m)), "image/svg+xml"
	case FormatPNG:
		res.Data, err = s.raster.Export(ctx, m)
		res.ContentType = "image/png"
	default:
		return nil, pkgerrors.NewValidationError("unsupported export format").WithDetail("format", format)
	}

	s.recorder.RecordExport(format, err)
	if err != nil {
		s.logger.Warn("Export failed", zap.String("format", format), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

// ShareLink encodes m into a public read-only link.
func (s *MindMapService) ShareLink(m *aggregates.MindMap) (string, error) {
	return export.ToShareableLink(m, s.shareBase, s.limits().MaxShareLinkBytes)
}

// OpenShared decodes the data parameter of a share link.
func (s *MindMapService) OpenShared(ctx context.Context, data string) (*aggregates.MindMap, error) {
	if strings.TrimSpace(data) == "" {
		return nil, pkgerrors.NewMalformedInputError("share link has no data parameter", nil)
	}
	return s.Import(ctx, []byte(data))
}

func (s *MindMapService) checkSize(m *aggregates.MindMap) error {
	if max := s.limits().MaxNodes; max > 0 && m.NodeCount() > max {
		return pkgerrors.NewValidationError("mind map has too many nodes").
			WithDetail("nodes", m.NodeCount()).
			WithDetail("max_nodes", max)
	}
	return nil
}

func (s *MindMapService) publish(ctx context.Context, evts []domainevents.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, evts...); err != nil {
		s.logger.Warn("Failed to publish events", zap.Int("count", len(evts)), zap.Error(err))
	}
}

func (s *MindMapService) logReport(source string, report domain.NormalizationReport) {
	s.recorder.RecordNormalization(report)
	if !report.Repaired() {
		return
	}
	s.logger.Debug("Normalized mind map with repairs",
		zap.String("source", source),
		zap.Int("synthesized_node_ids", report.SynthesizedNodeIDs),
		zap.Int("synthesized_edge_ids", report.SynthesizedEdgeIDs),
		zap.Int("defaulted_labels", report.DefaultedLabels),
		zap.Int("defaulted_positions", report.DefaultedPositions),
		zap.Int("dropped_nodes", report.DroppedNodes),
		zap.Int("dropped_edges", report.DroppedEdges),
		zap.Int("flattened_children", report.FlattenedChildren),
	)
}

// extractJSONObject returns the span from the first '{' to the last '}',
// which strips markdown fences and prose around a JSON answer.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
