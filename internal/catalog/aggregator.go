// Package catalog turns raw purchase records into an immutable snapshot
// of product groups with per-group summaries, details and price charts.
package catalog

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tayloree/order-catalog/internal/api"
	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/logger"
	"github.com/tayloree/order-catalog/internal/names"
)

// Item is one record that survived aggregation, with its parsed identity.
type Item struct {
	api.Record
	BaseName  string    `json:"base_name"`
	Size      string    `json:"size,omitempty"`
	Flavor    string    `json:"flavor,omitempty"`
	GroupKey  string    `json:"group_key"`
	Category  string    `json:"category"`
	UnitPrice float64   `json:"unit_price"`
	OrderedAt time.Time `json:"order_instant"`
}

// UnitPrice is price/quantity when both are finite and positive, else 0.
func UnitPrice(quantity, price *float64) float64 {
	q, okQ := api.Float(quantity)
	p, okP := api.Float(price)
	if !okQ || !okP || !positive(q) || !positive(p) {
		return 0
	}
	return p / q
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Aggregator builds snapshots. The zero value is not usable; use
// NewAggregator.
type Aggregator struct {
	parser     *names.Parser
	classifier *category.Classifier
	log        *logger.Logger
	now        func() time.Time
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithParser replaces the default name parser.
func WithParser(p *names.Parser) Option {
	return func(a *Aggregator) {
		if p != nil {
			a.parser = p
		}
	}
}

// WithClassifier replaces the default category rules.
func WithClassifier(c *category.Classifier) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithLogger enables debug events for dropped records and a summary line.
func WithLogger(l *logger.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

// WithClock overrides the load timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator returns an aggregator using the built-in parser and
// classifier unless overridden.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		parser:     names.New(names.DefaultOptions()),
		classifier: category.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Parser returns the name parser in use.
func (a *Aggregator) Parser() *names.Parser { return a.parser }

// Classifier returns the classifier in use.
func (a *Aggregator) Classifier() *category.Classifier { return a.classifier }

// Aggregate builds a snapshot from records. Records without a parseable
// date are dropped; nothing else can fail.
func (a *Aggregator) Aggregate(ctx context.Context, records []api.Record) *Snapshot {
	items := make([]Item, 0, len(records))
	dropped := 0
	for i, rec := range records {
		at, ok := ParseDate(api.Deref(rec.OrderDate))
		if !ok {
			dropped++
			a.log.Debug(ctx).
				Int("index", i).
				Str("order_id", api.Deref(rec.OrderID)).
				Str("order_date", api.Deref(rec.OrderDate)).
				Msg("dropping record with unparseable date")
			continue
		}

		parsed := a.parser.Parse(api.Deref(rec.ProductName))
		items = append(items, Item{
			Record:    rec,
			BaseName:  parsed.BaseName,
			Size:      parsed.Size,
			Flavor:    parsed.Flavor,
			GroupKey:  parsed.GroupKey,
			Category:  a.classifier.Classify(parsed.GroupKey),
			UnitPrice: UnitPrice(rec.ProductQuantity, rec.ProductPrice),
			OrderedAt: at,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OrderedAt.Before(items[j].OrderedAt)
	})

	snap := newSnapshot(items)
	snap.ID = uuid.New()
	snap.LoadedAt = a.now().UTC()
	snap.RecordsIn = len(records)
	snap.Dropped = dropped

	if a.log != nil {
		ctx = a.log.WithFields(ctx, map[string]any{
			"snapshot_id": snap.ID.String(),
			"records_in":  snap.RecordsIn,
			"items":       len(items),
			"dropped":     dropped,
			"groups":      len(snap.groups),
		})
		a.log.Info(ctx, "catalog aggregated")
	}
	return snap
}

// Aggregate runs the default aggregator without logging.
func Aggregate(records []api.Record) *Snapshot {
	return NewAggregator().Aggregate(context.Background(), records)
}
