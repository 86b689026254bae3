package vecgate

import (
	"context"

	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
)

// HealthStatus is the aggregated engine health, as served on /readyz.
type HealthStatus struct {
	Status string            // "ok" or "error"
	Checks map[string]string // component name to "ok" or "error"
}

// OK reports whether every check passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the engine connection. It never fails; problems show up in
// the returned status.
func (c *Client) Health(ctx context.Context) HealthStatus {
	sp := c.obs.begin(ctx, "health")
	report := c.healthSvc.Check(ctx)

	hs := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		hs.Checks[name] = string(res)
	}
	if hs.OK() {
		sp.end(nil)
	} else {
		sp.end(ErrEngineUnavailable)
	}
	return hs
}

type healthUseCase interface {
	Ping(ctx context.Context) error
	Check(ctx context.Context) healthuc.Report
}
