package costreport

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

var (
	// ErrInvalidCost is returned when a cost column holds a non-numeric value.
	ErrInvalidCost = errors.New("invalid cost value")
	// ErrMissingCost is returned when a rule requires a cost column that is
	// absent or empty.
	ErrMissingCost = errors.New("missing required cost value")
)

// amortizedRule computes the amortized cost contribution of one line item.
type amortizedRule func(item entity.LineItem) (float64, error)

// amortizedRules maps a line item type to its amortization rule. Types not
// listed fall back to the unblended cost. See
// https://wellarchitectedlabs.com/cost-optimization/cur_queries/queries/global/
var amortizedRules = map[string]amortizedRule{
	entity.LineItemSavingsPlanCoveredUsage: firstOf(entity.ColSPNetEffectiveCost, entity.ColSPEffectiveCost),
	entity.LineItemSavingsPlanRecurringFee: unusedCommitment,
	entity.LineItemSavingsPlanNegation:     zero,
	entity.LineItemSavingsPlanUpfrontFee:   zero,
	entity.LineItemDiscountedUsage:         firstOf(entity.ColRINetEffective, entity.ColRIEffectiveCost),
	entity.LineItemRIFee:                   unusedReservation,
	entity.LineItemFee:                     reservationFee,
}

var unblendedCost = firstOf(entity.ColNetUnblended, entity.ColUnblendedCost)

// Normalize returns the cost contribution of a single line item.
func Normalize(item entity.LineItem) (entity.CostTotals, error) {
	var (
		t   entity.CostTotals
		err error
	)
	if t.Unblended, err = unblendedCost(item); err != nil {
		return entity.CostTotals{}, err
	}
	if t.Blended, err = firstOf(entity.ColBlendedCost)(item); err != nil {
		return entity.CostTotals{}, err
	}
	if t.OnDemand, err = firstOf(entity.ColPublicOnDemand)(item); err != nil {
		return entity.CostTotals{}, err
	}
	if t.Amortized, err = AmortizedCost(item); err != nil {
		return entity.CostTotals{}, err
	}
	return t, nil
}

// AmortizedCost returns the amortized cost of a line item: commitment based
// discounts are spread over the usage they cover instead of the purchase.
func AmortizedCost(item entity.LineItem) (float64, error) {
	rule, ok := amortizedRules[item.Get(entity.ColLineItemType)]
	if !ok {
		rule = unblendedCost
	}
	return rule(item)
}

// Sum folds the contributions of every item of a group, in order.
func Sum(items []entity.LineItem) (entity.CostTotals, error) {
	var total entity.CostTotals
	for i, item := range items {
		c, err := Normalize(item)
		if err != nil {
			return entity.CostTotals{}, fmt.Errorf("line item %d: %w", i, err)
		}
		total.Add(c)
	}
	return total, nil
}

func zero(entity.LineItem) (float64, error) {
	return 0, nil
}

// firstOf parses the first non-empty column, defaulting to 0.
func firstOf(columns ...string) amortizedRule {
	return func(item entity.LineItem) (float64, error) {
		col, v, ok := item.FirstNonEmpty(columns...)
		if !ok {
			return 0, nil
		}
		return parseCost(col, v)
	}
}

func unusedCommitment(item entity.LineItem) (float64, error) {
	total, err := requiredCost(item, entity.ColSPTotalCommitment)
	if err != nil {
		return 0, err
	}
	used, err := requiredCost(item, entity.ColSPUsedCommitment)
	if err != nil {
		return 0, err
	}
	return total - used, nil
}

func unusedReservation(item entity.LineItem) (float64, error) {
	upfront, err := firstOf(entity.ColRINetUnusedUpfront, entity.ColRIUnusedUpfront)(item)
	if err != nil {
		return 0, err
	}
	recurring, err := firstOf(entity.ColRINetUnusedRecurring, entity.ColRIUnusedRecurring)(item)
	if err != nil {
		return 0, err
	}
	return upfront + recurring, nil
}

// reservationFee zeroes reservation purchase fees, which RIFee lines amortize.
func reservationFee(item entity.LineItem) (float64, error) {
	if item.Get(entity.ColReservationARN) != "" {
		return 0, nil
	}
	return unblendedCost(item)
}

func requiredCost(item entity.LineItem, column string) (float64, error) {
	v := item.Get(column)
	if v == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingCost, column)
	}
	return parseCost(column, v)
}

func parseCost(column, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCost, column, value)
	}
	return f, nil
}
