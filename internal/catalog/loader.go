package catalog

import (
	"context"
	"fmt"

	"github.com/tayloree/order-catalog/internal/api"
)

// Fetcher retrieves the raw records of every source.
type Fetcher interface {
	LoadAll(ctx context.Context, sources []string) ([]api.Record, error)
}

// Loader fetches records from fixed sources and aggregates them into a
// fresh snapshot on every call.
type Loader struct {
	fetcher Fetcher
	sources []string
	agg     *Aggregator
}

// NewLoader wires a fetcher to an aggregator. A nil aggregator uses the
// defaults.
func NewLoader(f Fetcher, sources []string, agg *Aggregator) *Loader {
	if agg == nil {
		agg = NewAggregator()
	}
	return &Loader{fetcher: f, sources: append([]string(nil), sources...), agg: agg}
}

// Sources returns the configured sources.
func (l *Loader) Sources() []string { return append([]string(nil), l.sources...) }

// Aggregator returns the aggregator snapshots are built with.
func (l *Loader) Aggregator() *Aggregator { return l.agg }

// Load fetches every source once and builds a snapshot. A fetch failure is
// returned as is and never retried here.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	records, err := l.fetcher.LoadAll(ctx, l.sources)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return l.agg.Aggregate(ctx, records), nil
}
