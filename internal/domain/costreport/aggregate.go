// Package costreport turns raw CUR line items into per-resource cost rollups.
//
// Line items are grouped under an aggregation key that identifies one billed
// resource (or one account-level cost category) for one billing period. Each
// group is then folded into four cost totals and mapped to a catalog entity.
// Nothing in this package performs I/O.
package costreport

import (
	"iter"
	"strings"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

// KeySeparator joins the parts of an aggregation key.
const KeySeparator = "@"

// BuildKey derives the aggregation key of a line item. An empty result means
// the item cannot be attributed and must be dropped.
func BuildKey(item entity.LineItem) string {
	resourceID := item.Get(entity.ColResourceID)
	usageAccountID := item.Get(entity.ColUsageAccountID)
	billStartDate := item.Get(entity.ColBillStartDate)

	var parts []string
	if resourceID != "" {
		// Resource ids such as ARNs already embed the account.
		if !strings.Contains(resourceID, usageAccountID) {
			parts = append(parts, usageAccountID)
		}
		parts = append(parts, resourceID, billStartDate)
	} else {
		parts = []string{
			usageAccountID,
			item.Get(entity.ColLineItemType),
			item.Get(entity.ColProductCode),
			item.Get(entity.ColUsageType),
			item.Get(entity.ColOperation),
			billStartDate,
		}
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, KeySeparator)
}

// Group is the ordered list of line items sharing one aggregation key.
type Group struct {
	Key   string
	Items []entity.LineItem
}

// Report maps aggregation keys to groups. Iteration follows the order in
// which keys were first seen.
type Report struct {
	keys   []string
	groups map[string]*Group
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{groups: make(map[string]*Group)}
}

// Len returns the number of groups.
func (r *Report) Len() int {
	return len(r.keys)
}

// Get returns the group stored under key.
func (r *Report) Get(key string) (*Group, bool) {
	g, ok := r.groups[key]
	return g, ok
}

// Keys returns the keys in first-seen order.
func (r *Report) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Groups iterates over the groups in first-seen order.
func (r *Report) Groups() iter.Seq[*Group] {
	return func(yield func(*Group) bool) {
		for _, k := range r.keys {
			if !yield(r.groups[k]) {
				return
			}
		}
	}
}

func (r *Report) append(key string, item entity.LineItem) {
	g, ok := r.groups[key]
	if !ok {
		g = &Group{Key: key}
		r.groups[key] = g
		r.keys = append(r.keys, key)
	}
	g.Items = append(g.Items, item)
}

// Aggregator groups a stream of line items into a Report. It is not safe for
// concurrent use.
type Aggregator struct {
	report  *Report
	read    int
	dropped int
}

// NewAggregator creates an Aggregator with an empty report.
func NewAggregator() *Aggregator {
	return &Aggregator{report: NewReport()}
}

// Add files the item under its key. It returns false when the item has no
// key and was dropped.
func (a *Aggregator) Add(item entity.LineItem) bool {
	a.read++
	key := BuildKey(item)
	if key == "" {
		a.dropped++
		return false
	}
	a.report.append(key, item)
	return true
}

// Consume drains a line item sequence in a single pass. It stops at the first
// decode error.
func (a *Aggregator) Consume(items iter.Seq2[entity.LineItem, error]) error {
	for item, err := range items {
		if err != nil {
			return err
		}
		a.Add(item)
	}
	return nil
}

// Report returns the report built so far.
func (a *Aggregator) Report() *Report {
	return a.report
}

// Read returns how many line items were offered to the aggregator.
func (a *Aggregator) Read() int {
	return a.read
}

// Dropped returns how many line items had an empty key.
func (a *Aggregator) Dropped() int {
	return a.dropped
}

// Reset discards all groups and counters.
func (a *Aggregator) Reset() {
	a.report = NewReport()
	a.read = 0
	a.dropped = 0
}
