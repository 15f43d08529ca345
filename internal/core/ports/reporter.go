package ports

import "go.trai.ch/lingo/internal/core/domain"

// Reporter presents the final outcome of a batch.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	// Report writes one status line per app, plus captured output for failures.
	Report(command string, results *domain.BatchBuildResults) error
}
