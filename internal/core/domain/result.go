package domain

import (
	"slices"
	"strings"
)

// Status is the outcome of one app within a batch.
// Values are ordered by severity so that merging keeps the worst outcome.
type Status int

const (
	// StatusSuccess means every requested step of the app succeeded.
	StatusSuccess Status = iota
	// StatusNotAttempted means the app was skipped after an upstream failure.
	StatusNotAttempted
	// StatusFailed means one of the app's steps failed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusNotAttempted:
		return "NotAttempted"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// BuildResult carries either success or an attributable error.
type BuildResult struct {
	Status Status
	Err    error
}

// Succeeded returns a successful result.
func Succeeded() BuildResult {
	return BuildResult{Status: StatusSuccess}
}

// Failed returns a failed result.
func Failed(err error) BuildResult {
	return BuildResult{Status: StatusFailed, Err: err}
}

// NotAttempted returns a result for an app that never started.
func NotAttempted(reason error) BuildResult {
	return BuildResult{Status: StatusNotAttempted, Err: reason}
}

// OK reports whether the result is a success.
func (r BuildResult) OK() bool {
	return r.Status == StatusSuccess
}

// Merge combines two results. It is associative and commutative:
// the more severe status wins and equal non-success statuses keep both errors.
func Merge(a, b BuildResult) BuildResult {
	switch {
	case a.Status > b.Status:
		return a
	case b.Status > a.Status:
		return b
	case a.Status == StatusSuccess:
		return Succeeded()
	case a.Err == nil:
		return b
	case b.Err == nil:
		return a
	default:
		return BuildResult{Status: a.Status, Err: NewCompositeError(a.Err, b.Err)}
	}
}

// AppResult pairs an app with its outcome.
type AppResult struct {
	App    *App
	Result BuildResult
}

// OverallStatus summarises a batch.
type OverallStatus int

const (
	// AllSuccess means every app succeeded (or the batch was empty).
	AllSuccess OverallStatus = iota
	// PartialFailure means some but not all apps succeeded.
	PartialFailure
	// TotalFailure means no app succeeded.
	TotalFailure
)

// String returns the overall status name.
func (s OverallStatus) String() string {
	switch s {
	case AllSuccess:
		return "all-success"
	case PartialFailure:
		return "partial-failure"
	default:
		return "total-failure"
	}
}

// BatchBuildResults maps each app of a batch to its result, preserving batch order.
type BatchBuildResults struct {
	order   []*App
	results map[string]BuildResult
}

// NewBatchBuildResults creates an empty result set for the given apps.
// Apps without a recorded result report as not attempted.
func NewBatchBuildResults(apps []*App) *BatchBuildResults {
	b := &BatchBuildResults{
		results: make(map[string]BuildResult, len(apps)),
	}
	for _, app := range apps {
		b.register(app)
	}
	return b
}

func (b *BatchBuildResults) register(app *App) {
	for _, known := range b.order {
		if known.Name == app.Name {
			return
		}
	}
	b.order = append(b.order, app)
}

// Record stores the result of an app, merging with any earlier result for it.
func (b *BatchBuildResults) Record(app *App, result BuildResult) {
	b.register(app)
	if prev, ok := b.results[app.Name]; ok {
		result = Merge(prev, result)
	}
	b.results[app.Name] = result
}

// Absorb records every result of other into b.
func (b *BatchBuildResults) Absorb(other *BatchBuildResults) {
	if other == nil {
		return
	}
	other.Each(func(app *App, result BuildResult) {
		b.Record(app, result)
	})
}

// Result returns the result of the named app.
func (b *BatchBuildResults) Result(name string) (BuildResult, bool) {
	for _, app := range b.order {
		if app.Name == name {
			return b.resultOf(app), true
		}
	}
	return BuildResult{}, false
}

func (b *BatchBuildResults) resultOf(app *App) BuildResult {
	if r, ok := b.results[app.Name]; ok {
		return r
	}
	return NotAttempted(&BuildError{Kind: KindUpstreamFailure, App: app.Name, Step: StepPreflight, ExitCode: -1})
}

// Apps returns the apps of the batch in order.
func (b *BatchBuildResults) Apps() []*App {
	return append([]*App(nil), b.order...)
}

// Len returns the number of apps in the batch.
func (b *BatchBuildResults) Len() int {
	return len(b.order)
}

// Each calls fn for every app in batch order.
func (b *BatchBuildResults) Each(fn func(*App, BuildResult)) {
	for _, app := range b.order {
		fn(app, b.resultOf(app))
	}
}

// Succeeded returns the apps whose result is a success, in batch order.
func (b *BatchBuildResults) Succeeded() []*App {
	var ok []*App
	b.Each(func(app *App, r BuildResult) {
		if r.OK() {
			ok = append(ok, app)
		}
	})
	return ok
}

// Count returns the number of apps with the given status.
func (b *BatchBuildResults) Count(status Status) int {
	n := 0
	b.Each(func(_ *App, r BuildResult) {
		if r.Status == status {
			n++
		}
	})
	return n
}

// Overall derives the batch status.
func (b *BatchBuildResults) Overall() OverallStatus {
	ok := b.Count(StatusSuccess)
	switch ok {
	case len(b.order):
		return AllSuccess
	case 0:
		return TotalFailure
	default:
		return PartialFailure
	}
}

// Err returns a CompositeError of every failure, or nil when all apps succeeded.
// Skipped apps only contribute when nothing failed outright.
func (b *BatchBuildResults) Err() error {
	var failed, skipped []error
	b.Each(func(_ *App, r BuildResult) {
		switch r.Status {
		case StatusFailed:
			failed = append(failed, r.Err)
		case StatusNotAttempted:
			skipped = append(skipped, r.Err)
		case StatusSuccess:
		}
	})
	switch {
	case len(failed) > 0:
		return NewCompositeError(failed...)
	case len(skipped) > 0:
		return NewCompositeError(skipped...)
	default:
		return nil
	}
}

// Aggregate merges per-app results into one batch. The outcome does not depend on
// the order of pairs; apps missing from order are appended sorted by name.
func Aggregate(order []*App, pairs []AppResult) *BatchBuildResults {
	b := NewBatchBuildResults(order)

	var extra []*App
	for _, p := range pairs {
		if _, ok := b.Result(p.App.Name); !ok && !slices.ContainsFunc(extra, func(a *App) bool {
			return a.Name == p.App.Name
		}) {
			extra = append(extra, p.App)
		}
	}
	slices.SortFunc(extra, func(x, y *App) int { return strings.Compare(x.Name, y.Name) })
	for _, app := range extra {
		b.register(app)
	}

	for _, p := range pairs {
		b.Record(p.App, p.Result)
	}
	return b
}
