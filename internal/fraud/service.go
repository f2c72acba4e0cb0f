package fraud

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("veridoc/fraud")

// Rasterizer renders the first page of a PDF to PNG bytes. The service only
// needs it when callers upload PDFs instead of images.
type Rasterizer interface {
	RasterizePDF(ctx context.Context, pdf []byte) ([]byte, error)
}

// Metrics counts completed analyses by risk level. Nil is a no-op.
type Metrics struct {
	analyses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		analyses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_fraud_analyses_total",
			Help: "Fraud analyses by resulting risk level.",
		}, []string{"risk_level"}),
	}
}

func (m *Metrics) ObserveAnalysis(level RiskLevel) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(string(level)).Inc()
}

// Service runs the full analysis pipeline: rasterize if needed, run the
// structure and forensics analyzers in parallel, score the declared content,
// and classify the blend.
type Service struct {
	weights    Weights
	rasterizer Rasterizer
	logs       LogStore
	metrics    *Metrics
	log        *slog.Logger
	now        func() time.Time
}

func NewService(rasterizer Rasterizer, logs LogStore, metrics *Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		weights:    DefaultWeights,
		rasterizer: rasterizer,
		logs:       logs,
		metrics:    metrics,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Analyze scores an uploaded document. It never returns an error to the
// caller: a broken pipeline yields a conservative MEDIUM assessment so the
// upstream flow can continue with a flag rather than fail.
func (s *Service) Analyze(ctx context.Context, file []byte, filename string, fields ContentFields) (assessment Assessment) {
	ctx, span := tracer.Start(ctx, "fraud.Analyze")
	defer span.End()

	analysisID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("fraud analysis panicked", slog.Any("panic", r))
			assessment = s.fallback(analysisID, fmt.Sprintf("Analysis failed: %v", r))
		}
		span.SetAttributes(attribute.String("fraud.risk_level", string(assessment.RiskLevel)))
		s.metrics.ObserveAnalysis(assessment.RiskLevel)
		s.persist(ctx, filename, assessment)
	}()

	raster := s.load(ctx, file)

	var structure, forensics AnalyzerResult
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		structure = AnalyzeStructure(raster)
		return nil
	})
	g.Go(func() error {
		forensics = AnalyzeForensics(raster)
		return nil
	})
	content := AnalyzeContent(fields, s.now())
	if err := g.Wait(); err != nil {
		return s.fallback(analysisID, fmt.Sprintf("Analysis failed: %v", err))
	}

	assessment = Classify(structure, content, forensics, s.weights)
	assessment.AnalysisID = analysisID
	assessment.AnalyzedAt = s.now()
	return assessment
}

// load decodes the upload, rasterizing PDFs first when a rasterizer is wired.
// A nil return means the file is not a usable image; the analyzers turn that
// into zero scores rather than an error.
func (s *Service) load(ctx context.Context, file []byte) *Raster {
	data := file
	if bytes.HasPrefix(file, []byte("%PDF-")) {
		if s.rasterizer == nil {
			s.log.Warn("pdf upload without a rasterizer configured")
			return nil
		}
		rendered, err := s.rasterizer.RasterizePDF(ctx, file)
		if err != nil {
			s.log.Warn("pdf rasterization failed", slog.String("error", err.Error()))
			return nil
		}
		data = rendered
	}
	raster, err := LoadRaster(data)
	if err != nil {
		s.log.Warn("image decode failed", slog.String("error", err.Error()))
		return nil
	}
	return raster
}

// fallback is the conservative verdict when the pipeline itself broke.
func (s *Service) fallback(analysisID, reason string) Assessment {
	return Assessment{
		AnalysisID:      analysisID,
		RiskLevel:       RiskMedium,
		RiskScore:       0.5,
		Confidence:      0,
		Issues:          []string{reason},
		Recommendations: []string{"Manual review required: automated analysis did not complete"},
		AnalyzedAt:      s.now(),
	}
}

func (s *Service) persist(ctx context.Context, filename string, assessment Assessment) {
	if s.logs == nil {
		return
	}
	err := s.logs.Save(ctx, LogEntry{
		AnalysisID: assessment.AnalysisID,
		Filename:   filename,
		RiskLevel:  assessment.RiskLevel,
		RiskScore:  assessment.RiskScore,
		Issues:     assessment.Issues,
		CreatedAt:  assessment.AnalyzedAt,
	})
	if err != nil {
		s.log.Warn("failed to persist fraud log", slog.String("error", err.Error()))
	}
}

// Logs returns recent analysis logs.
func (s *Service) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if s.logs == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.logs.List(ctx, limit)
}
