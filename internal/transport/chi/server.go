package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/search/request"
	"github.com/kailas-cloud/vecgate/internal/domain/search/result"
	domusage "github.com/kailas-cloud/vecgate/internal/domain/usage"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
	"github.com/kailas-cloud/vecgate/internal/fault"
	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
)

// EmbeddingTokensHeader reports the embedding tokens a request consumed.
const EmbeddingTokensHeader = "X-Embedding-Tokens"

// VectorService is the use case behind the vector routes.
type VectorService interface {
	Upsert(ctx context.Context, items []vector.Item) (int, error)
	Search(ctx context.Context, req *request.Request) ([]result.Match, error)
}

// HealthService is the use case behind the health routes.
type HealthService interface {
	Ping(ctx context.Context) error
	Check(ctx context.Context) healthuc.Report
}

// UsageService reports embedding token usage.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Server serves the gateway's HTTP API.
type Server struct {
	vectors VectorService
	health  HealthService
	usage   UsageService
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(vectors VectorService, health HealthService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{vectors: vectors, health: health, logger: logger}
}

// WithUsage enables GET /usage.
func (s *Server) WithUsage(u UsageService) *Server {
	s.usage = u
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Healthz)
	r.Get("/readyz", s.Readyz)
	r.Post("/vectors/upsert", s.UpsertVectors)
	r.Post("/vectors/search", s.SearchVectors)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if s.usage != nil {
		r.Get("/usage", s.GetUsage)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, fault.CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fault.CodeBadRequest, "method not allowed")
	})
}

// Handler returns a router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy)})
}

// Readyz handles GET /readyz.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	code := http.StatusOK
	if report.Status != healthuc.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, readinessResponse{Status: string(report.Status), Checks: checks})
}

// UpsertVectors handles POST /vectors/upsert.
func (s *Server) UpsertVectors(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items, err := itemsFromRequest(req.Vectors)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	n, err := s.vectors.Upsert(ctx, items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, upsertResponse{UpsertedCount: n})
}

// SearchVectors handles POST /vectors/search.
func (s *Server) SearchVectors(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sr, err := searchRequestFromDTO(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	matches, err := s.vectors.Search(ctx, &sr)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := searchResponse{Matches: make([]matchDTO, len(matches))}
	for i := range matches {
		resp.Matches[i] = matchToDTO(&matches[i])
	}

	setUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToDTO(&report))
}

// handleDomainError writes the public form of err. Unexpected failures are
// logged with their detail, which never reaches the caller.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	f := fault.Translate(err)

	log := s.logger.With(zap.String("request_id", chimw.GetReqID(r.Context())))
	switch {
	case f.Internal():
		log.Error("unhandled error", zap.Error(err), zap.String("path", r.URL.Path))
	case f.Status >= http.StatusInternalServerError:
		log.Warn("engine failure", zap.Error(err), zap.Int("status", f.Status))
	}

	writeError(w, f.Status, f.Code, f.Message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		msg := "Invalid request body: " + err.Error()
		if errors.As(err, &syntaxErr) {
			msg = "Invalid JSON at offset " + strconv.FormatInt(syntaxErr.Offset, 10)
		}
		writeError(w, http.StatusBadRequest, fault.CodeBadRequest, msg)
		return false
	}
	return true
}

func setUsageHeader(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set(EmbeddingTokensHeader, strconv.Itoa(tokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
