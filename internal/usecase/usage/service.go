// Package usage reports embedding token consumption for the current day or month.
package usage

import (
	"context"

	domusage "github.com/kailas-cloud/vecgate/internal/domain/usage"
	"github.com/kailas-cloud/vecgate/internal/domain/usage/budget"
	"github.com/kailas-cloud/vecgate/internal/usecase/embedding"
)

// Service handles usage reporting.
type Service struct {
	br       BudgetReader
	provider string
}

// New creates a Service for one embedding provider.
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider}
}

// GetReport reads the budget window matching period. Window bounds come from
// the tracker so the report and the enforcement agree on when a period ends.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	w := s.br.Snapshot(windowFor(period))
	end := w.End.UnixMilli()

	b := budget.Unlimited(end)
	if !w.Unlimited() {
		b = budget.New(w.Limit, w.Remaining(), w.Exhausted(), end)
	}
	return domusage.NewReport(period, w.Start.UnixMilli(), end, s.provider, w.Used, b)
}

func windowFor(p domusage.Period) embedding.Period {
	if p == domusage.PeriodMonth {
		return embedding.PeriodMonthly
	}
	return embedding.PeriodDaily
}
