package usage

import "github.com/kailas-cloud/vecgate/internal/usecase/embedding"

// BudgetReader exposes the token budget windows.
type BudgetReader interface {
	Snapshot(p embedding.Period) embedding.WindowState
}
