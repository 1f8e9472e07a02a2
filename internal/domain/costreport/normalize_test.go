package costreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

func TestAmortizedCost(t *testing.T) {
	tests := []struct {
		name string
		item entity.LineItem
		want float64
	}{
		{
			name: "savings plan covered usage prefers net",
			item: entity.LineItem{
				entity.ColLineItemType:       entity.LineItemSavingsPlanCoveredUsage,
				entity.ColSPNetEffectiveCost: "1.25",
				entity.ColSPEffectiveCost:    "2.5",
				entity.ColUnblendedCost:      "9",
			},
			want: 1.25,
		},
		{
			name: "savings plan covered usage falls back to effective",
			item: entity.LineItem{
				entity.ColLineItemType:       entity.LineItemSavingsPlanCoveredUsage,
				entity.ColSPNetEffectiveCost: "",
				entity.ColSPEffectiveCost:    "2.5",
			},
			want: 2.5,
		},
		{
			name: "savings plan covered usage without costs",
			item: entity.LineItem{entity.ColLineItemType: entity.LineItemSavingsPlanCoveredUsage},
			want: 0,
		},
		{
			name: "savings plan recurring fee is the unused commitment",
			item: entity.LineItem{
				entity.ColLineItemType:      entity.LineItemSavingsPlanRecurringFee,
				entity.ColSPTotalCommitment: "100",
				entity.ColSPUsedCommitment:  "60",
			},
			want: 40,
		},
		{
			name: "savings plan negation",
			item: entity.LineItem{
				entity.ColLineItemType:  entity.LineItemSavingsPlanNegation,
				entity.ColUnblendedCost: "-12",
				entity.ColNetUnblended:  "-11",
			},
			want: 0,
		},
		{
			name: "savings plan upfront fee",
			item: entity.LineItem{
				entity.ColLineItemType:  entity.LineItemSavingsPlanUpfrontFee,
				entity.ColUnblendedCost: "1000",
			},
			want: 0,
		},
		{
			name: "discounted usage prefers net effective cost",
			item: entity.LineItem{
				entity.ColLineItemType:    entity.LineItemDiscountedUsage,
				entity.ColRINetEffective:  "0.7",
				entity.ColRIEffectiveCost: "0.8",
			},
			want: 0.7,
		},
		{
			name: "discounted usage falls back to effective cost",
			item: entity.LineItem{
				entity.ColLineItemType:    entity.LineItemDiscountedUsage,
				entity.ColRIEffectiveCost: "0.8",
			},
			want: 0.8,
		},
		{
			name: "RI fee sums unused upfront and recurring",
			item: entity.LineItem{
				entity.ColLineItemType:      entity.LineItemRIFee,
				entity.ColRIUnusedUpfront:   "10",
				entity.ColRIUnusedRecurring: "5",
				entity.ColUnblendedCost:     "300",
			},
			want: 15,
		},
		{
			name: "RI fee prefers net columns",
			item: entity.LineItem{
				entity.ColLineItemType:         entity.LineItemRIFee,
				entity.ColRINetUnusedUpfront:   "8",
				entity.ColRIUnusedUpfront:      "10",
				entity.ColRINetUnusedRecurring: "4",
				entity.ColRIUnusedRecurring:    "5",
			},
			want: 12,
		},
		{
			name: "reservation fee with ARN",
			item: entity.LineItem{
				entity.ColLineItemType:   entity.LineItemFee,
				entity.ColReservationARN: "arn:aws:ec2:us-east-1:123456789012:reserved-instances/abc",
				entity.ColUnblendedCost:  "500",
			},
			want: 0,
		},
		{
			name: "plain fee",
			item: entity.LineItem{
				entity.ColLineItemType:   entity.LineItemFee,
				entity.ColReservationARN: "",
				entity.ColUnblendedCost:  "29",
			},
			want: 29,
		},
		{
			name: "usage prefers net unblended",
			item: entity.LineItem{
				entity.ColLineItemType:  "Usage",
				entity.ColNetUnblended:  "3",
				entity.ColUnblendedCost: "4",
			},
			want: 3,
		},
		{
			name: "credit",
			item: entity.LineItem{
				entity.ColLineItemType:  "Credit",
				entity.ColUnblendedCost: "-2.5",
			},
			want: -2.5,
		},
		{
			name: "tax without cost columns",
			item: entity.LineItem{entity.ColLineItemType: "Tax"},
			want: 0,
		},
		{
			name: "net value of zero is not skipped",
			item: entity.LineItem{
				entity.ColLineItemType:  "Usage",
				entity.ColNetUnblended:  "0",
				entity.ColUnblendedCost: "4",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmortizedCost(tt.item)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAmortizedCost_RecurringFeeRequiresCommitment(t *testing.T) {
	tests := []struct {
		name   string
		item   entity.LineItem
		column string
	}{
		{
			name: "total absent",
			item: entity.LineItem{
				entity.ColLineItemType:     entity.LineItemSavingsPlanRecurringFee,
				entity.ColSPUsedCommitment: "1",
			},
			column: entity.ColSPTotalCommitment,
		},
		{
			name: "used empty",
			item: entity.LineItem{
				entity.ColLineItemType:      entity.LineItemSavingsPlanRecurringFee,
				entity.ColSPTotalCommitment: "1",
				entity.ColSPUsedCommitment:  "",
			},
			column: entity.ColSPUsedCommitment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AmortizedCost(tt.item)
			require.ErrorIs(t, err, ErrMissingCost)
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}

func TestNormalize(t *testing.T) {
	item := entity.LineItem{
		entity.ColLineItemType:    entity.LineItemDiscountedUsage,
		entity.ColUnblendedCost:   "1.5",
		entity.ColBlendedCost:     "1.4",
		entity.ColPublicOnDemand:  "2",
		entity.ColRIEffectiveCost: "0.9",
	}
	got, err := Normalize(item)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got.Unblended, 1e-9)
	assert.InDelta(t, 1.4, got.Blended, 1e-9)
	assert.InDelta(t, 2.0, got.OnDemand, 1e-9)
	assert.InDelta(t, 0.9, got.Amortized, 1e-9)
}

func TestNormalize_EmptyColumnsCountAsZero(t *testing.T) {
	got, err := Normalize(entity.LineItem{
		entity.ColLineItemType:   "Usage",
		entity.ColBlendedCost:    "",
		entity.ColPublicOnDemand: "",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CostTotals{}, got)
}

func TestNormalize_InvalidNumber(t *testing.T) {
	_, err := Normalize(entity.LineItem{
		entity.ColLineItemType:  "Usage",
		entity.ColUnblendedCost: "n/a",
	})
	require.ErrorIs(t, err, ErrInvalidCost)
	assert.Contains(t, err.Error(), entity.ColUnblendedCost)
}

func TestSum_CreditsSubtract(t *testing.T) {
	items := []entity.LineItem{
		{entity.ColLineItemType: "Usage", entity.ColUnblendedCost: "1.5"},
		{entity.ColLineItemType: "Usage", entity.ColUnblendedCost: "2.0"},
		{entity.ColLineItemType: "Credit", entity.ColUnblendedCost: "-0.5"},
	}
	got, err := Sum(items)
	require.NoError(t, err)
	// 1.5 + 2.0 - 0.5: the credit is subtracted once, never clamped.
	assert.InDelta(t, 3.0, got.Unblended, 1e-9)
	assert.InDelta(t, 3.0, got.Amortized, 1e-9)
}

func TestSum_ReportsFailingLine(t *testing.T) {
	items := []entity.LineItem{
		{entity.ColLineItemType: "Usage", entity.ColUnblendedCost: "1"},
		{entity.ColLineItemType: entity.LineItemSavingsPlanRecurringFee},
	}
	_, err := Sum(items)
	require.ErrorIs(t, err, ErrMissingCost)
	assert.Contains(t, err.Error(), "line item 1")
}
