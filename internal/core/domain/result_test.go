package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lingo/internal/core/domain"
)

func processErr(app string) error {
	return &domain.BuildError{Kind: domain.KindProcessFailure, App: app, Step: domain.StepCompile, ExitCode: 1}
}

func skippedErr(app string) error {
	return &domain.BuildError{Kind: domain.KindUpstreamFailure, App: app, Step: domain.StepConfigure, ExitCode: -1}
}

func sampleResults() []domain.BuildResult {
	return []domain.BuildResult{
		domain.Succeeded(),
		domain.Failed(processErr("a")),
		domain.Failed(processErr("b")),
		domain.NotAttempted(skippedErr("c")),
		domain.NotAttempted(skippedErr("d")),
	}
}

func TestMerge_SeverityWins(t *testing.T) {
	failed := domain.Failed(processErr("a"))
	skipped := domain.NotAttempted(skippedErr("a"))

	assert.Equal(t, failed, domain.Merge(domain.Succeeded(), failed))
	assert.Equal(t, failed, domain.Merge(skipped, failed))
	assert.Equal(t, skipped, domain.Merge(skipped, domain.Succeeded()))
	assert.True(t, domain.Merge(domain.Succeeded(), domain.Succeeded()).OK())
}

func TestMerge_KeepsBothFailures(t *testing.T) {
	merged := domain.Merge(domain.Failed(processErr("b")), domain.Failed(processErr("a")))

	require.Equal(t, domain.StatusFailed, merged.Status)
	var composite *domain.CompositeError
	require.ErrorAs(t, merged.Err, &composite)
	assert.Equal(t, []string{"a", "b"}, composite.Names())
}

func TestMerge_Commutative(t *testing.T) {
	for _, a := range sampleResults() {
		for _, b := range sampleResults() {
			assert.Equal(t, domain.Merge(a, b), domain.Merge(b, a), "%v / %v", a, b)
		}
	}
}

func TestMerge_Associative(t *testing.T) {
	results := sampleResults()
	for _, a := range results {
		for _, b := range results {
			for _, c := range results {
				left := domain.Merge(domain.Merge(a, b), c)
				right := domain.Merge(a, domain.Merge(b, c))
				assert.Equal(t, left, right, "%v / %v / %v", a, b, c)
			}
		}
	}
}

func apps(names ...string) []*domain.App {
	out := make([]*domain.App, 0, len(names))
	for _, name := range names {
		out = append(out, &domain.App{Name: name})
	}
	return out
}

type entry struct {
	name   string
	status domain.Status
}

func entries(b *domain.BatchBuildResults) []entry {
	var out []entry
	b.Each(func(app *domain.App, r domain.BuildResult) {
		out = append(out, entry{app.Name, r.Status})
	})
	return out
}

func TestAggregate_OrderIndependent(t *testing.T) {
	order := apps("a", "b", "c")
	x, y := apps("x")[0], apps("y")[0]
	pairs := []domain.AppResult{
		{App: order[0], Result: domain.Succeeded()},
		{App: order[1], Result: domain.Failed(processErr("b"))},
		{App: y, Result: domain.Succeeded()},
		{App: order[0], Result: domain.Failed(processErr("a"))},
		{App: x, Result: domain.NotAttempted(skippedErr("x"))},
	}
	reversed := make([]domain.AppResult, len(pairs))
	for i, p := range pairs {
		reversed[len(pairs)-1-i] = p
	}

	want := []entry{
		{"a", domain.StatusFailed},
		{"b", domain.StatusFailed},
		{"c", domain.StatusNotAttempted},
		{"x", domain.StatusNotAttempted},
		{"y", domain.StatusSuccess},
	}
	assert.Equal(t, want, entries(domain.Aggregate(order, pairs)))
	assert.Equal(t, want, entries(domain.Aggregate(order, reversed)))
	assert.Equal(t, domain.Aggregate(order, pairs).Err().Error(), domain.Aggregate(order, reversed).Err().Error())
}

func TestBatchBuildResults_Overall(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.BuildResult
		want    domain.OverallStatus
	}{
		{"empty", nil, domain.AllSuccess},
		{"all success", []domain.BuildResult{domain.Succeeded(), domain.Succeeded()}, domain.AllSuccess},
		{"partial", []domain.BuildResult{domain.Succeeded(), domain.Failed(processErr("b"))}, domain.PartialFailure},
		{"only skipped", []domain.BuildResult{domain.NotAttempted(skippedErr("a"))}, domain.TotalFailure},
		{"total", []domain.BuildResult{domain.Failed(processErr("a")), domain.NotAttempted(skippedErr("b"))}, domain.TotalFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := apps("a", "b")[:len(tt.results)]
			b := domain.NewBatchBuildResults(list)
			for i, r := range tt.results {
				b.Record(list[i], r)
			}
			assert.Equal(t, tt.want, b.Overall())
		})
	}
}

func TestBatchBuildResults_UnrecordedAppsAreNotAttempted(t *testing.T) {
	list := apps("a", "b")
	b := domain.NewBatchBuildResults(list)
	b.Record(list[0], domain.Succeeded())

	r, ok := b.Result("b")
	require.True(t, ok)
	assert.Equal(t, domain.StatusNotAttempted, r.Status)
	assert.ErrorIs(t, r.Err, domain.ErrNotAttempted)

	_, ok = b.Result("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, b.Count(domain.StatusSuccess))
	assert.Equal(t, []*domain.App{list[0]}, b.Succeeded())
}

func TestBatchBuildResults_Absorb(t *testing.T) {
	list := apps("a", "b")
	b := domain.NewBatchBuildResults(list)
	b.Record(list[0], domain.Succeeded())

	other := domain.NewBatchBuildResults(list[:1])
	other.Record(list[0], domain.Failed(processErr("a")))
	b.Absorb(other)
	b.Absorb(nil)

	r, _ := b.Result("a")
	assert.Equal(t, domain.StatusFailed, r.Status)
	assert.Equal(t, 2, b.Len())
}

func TestBatchBuildResults_Err(t *testing.T) {
	list := apps("a", "b", "c")
	b := domain.NewBatchBuildResults(list)
	b.Record(list[0], domain.Succeeded())
	assert.Error(t, b.Err(), "unrecorded apps count as skipped")

	b.Record(list[1], domain.Failed(processErr("b")))
	b.Record(list[2], domain.NotAttempted(skippedErr("c")))

	err := b.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalProcessFailed)
	assert.False(t, errors.Is(err, domain.ErrNotAttempted), "skips are hidden behind real failures")

	all := domain.NewBatchBuildResults(list[:1])
	all.Record(list[0], domain.Succeeded())
	assert.NoError(t, all.Err())
}
