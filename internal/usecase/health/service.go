package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Component names used as report keys.
const (
	ComponentEngine         = "engine"
	ComponentEmbeddingCache = "embedding_cache"
)

// Service coordinates health checks.
type Service struct {
	engine EnginePinger
	cache  CachePinger
}

// New creates a Service. cache can be nil when caching is disabled.
func New(engine EnginePinger, cache CachePinger) *Service {
	return &Service{engine: engine, cache: cache}
}

// Ping checks the engine alone.
func (s *Service) Ping(ctx context.Context) error {
	return s.engine.Ping(ctx) //nolint:wrapcheck // status error goes to the fault translator as is
}

// Check runs health checks against all components.
// The engine is required; a failing cache only degrades the report.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	status := Healthy
	if err := s.engine.Ping(ctx); err != nil {
		checks[ComponentEngine] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentEngine] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks[ComponentEmbeddingCache] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentEmbeddingCache] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
