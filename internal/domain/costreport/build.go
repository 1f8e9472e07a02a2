package costreport

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

// ErrMissingColumn is returned when a group lacks a descriptive column that
// every cost entity carries.
var ErrMissingColumn = errors.New("missing required column")

const arnPrefix = "arn:"

var identifierRe = regexp.MustCompile(`[^A-Za-z0-9@_.:/=-]`)

// DefaultTagColumns maps cost entity properties to the resource tag columns
// they are read from.
var DefaultTagColumns = map[string]string{
	"kubernetesServiceName": entity.ColTagK8sServiceName,
	"environment":           entity.ColTagEnvironment,
}

// BuildOptions configures entity construction.
type BuildOptions struct {
	Blueprint         string
	ResourceBlueprint string
	// TagColumns maps a property name to a CUR column. Absent columns are
	// left out of the entity.
	TagColumns map[string]string
}

// SanitizeIdentifier strips the characters the catalog rejects in
// identifiers.
func SanitizeIdentifier(key string) string {
	return identifierRe.ReplaceAllString(key, "")
}

// BuildCostEntity rolls a group up into a single cost entity. Descriptive
// fields are taken from the first line item; a group is assumed to describe
// one resource, so later items are not checked against it.
func BuildCostEntity(g *Group, opts BuildOptions) (entity.CostEntity, error) {
	if len(g.Items) == 0 {
		return entity.CostEntity{}, fmt.Errorf("group %q is empty", g.Key)
	}
	first := g.Items[0]

	required := []string{
		entity.ColPayerAccountID,
		entity.ColUsageAccountID,
		entity.ColBillStartDate,
		entity.ColProductName,
		entity.ColResourceID,
		entity.ColOperation,
	}
	for _, col := range required {
		if !first.Has(col) {
			return entity.CostEntity{}, fmt.Errorf("group %q: %w: %s", g.Key, ErrMissingColumn, col)
		}
	}

	totals, err := Sum(g.Items)
	if err != nil {
		return entity.CostEntity{}, fmt.Errorf("group %q: %w", g.Key, err)
	}

	var tags map[string]string
	for name, col := range opts.TagColumns {
		if !first.Has(col) {
			continue
		}
		if tags == nil {
			tags = make(map[string]string, len(opts.TagColumns))
		}
		tags[name] = first.Get(col)
	}

	return entity.CostEntity{
		Identifier:     SanitizeIdentifier(g.Key),
		Blueprint:      opts.Blueprint,
		Totals:         totals,
		PayingAccount:  first.Get(entity.ColPayerAccountID),
		UsageAccount:   first.Get(entity.ColUsageAccountID),
		BillStartDate:  first.Get(entity.ColBillStartDate),
		Product:        first.Get(entity.ColProductName),
		ResourceID:     first.Get(entity.ColResourceID),
		Operation:      first.Get(entity.ColOperation),
		Tags:           tags,
		LineItemsCount: len(g.Items),
	}, nil
}

// BuildCostEntities lazily yields one cost entity per group in report order.
// Iteration stops after the first error.
func BuildCostEntities(r *Report, opts BuildOptions) iter.Seq2[entity.CostEntity, error] {
	return func(yield func(entity.CostEntity, error) bool) {
		for g := range r.Groups() {
			e, err := BuildCostEntity(g, opts)
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// BuildCloudResource describes the ARN-addressed resource behind a group.
// The second result is false for groups not keyed by an ARN.
func BuildCloudResource(g *Group, opts BuildOptions) (entity.CloudResource, bool) {
	arn, _, _ := strings.Cut(g.Key, KeySeparator)
	if !strings.HasPrefix(arn, arnPrefix) || len(g.Items) == 0 {
		return entity.CloudResource{}, false
	}
	first := g.Items[0]

	// arn:partition:service:region:account:resource
	segments := strings.Split(arn, ":")
	title := segments[len(segments)-1]
	region := first.Get(entity.ColProductRegion)
	if region == "" && len(segments) > 3 {
		region = segments[3]
	}

	return entity.CloudResource{
		Identifier: SanitizeIdentifier(arn),
		Title:      title,
		Blueprint:  opts.ResourceBlueprint,
		Service:    first.Get(entity.ColProductCode),
		Region:     region,
		AccountID:  first.Get(entity.ColUsageAccountID),
	}, true
}

// BuildCloudResources yields a resource for every ARN-keyed group.
func BuildCloudResources(r *Report, opts BuildOptions) iter.Seq[entity.CloudResource] {
	return func(yield func(entity.CloudResource) bool) {
		for g := range r.Groups() {
			res, ok := BuildCloudResource(g, opts)
			if !ok {
				continue
			}
			if !yield(res) {
				return
			}
		}
	}
}
