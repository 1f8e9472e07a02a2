package entity

// CUR column names read by the sync.
const (
	ColResourceID      = "lineItem/ResourceId"
	ColUsageAccountID  = "lineItem/UsageAccountId"
	ColLineItemType    = "lineItem/LineItemType"
	ColProductCode     = "lineItem/ProductCode"
	ColUsageType       = "lineItem/UsageType"
	ColOperation       = "lineItem/Operation"
	ColUnblendedCost   = "lineItem/UnblendedCost"
	ColNetUnblended    = "lineItem/NetUnblendedCost"
	ColBlendedCost     = "lineItem/BlendedCost"
	ColBillStartDate   = "bill/BillingPeriodStartDate"
	ColPayerAccountID  = "bill/PayerAccountId"
	ColProductName     = "product/ProductName"
	ColProductRegion   = "product/region"
	ColPublicOnDemand  = "pricing/publicOnDemandCost"
	ColReservationARN  = "reservation/ReservationARN"
	ColRIEffectiveCost = "reservation/EffectiveCost"
	ColRINetEffective  = "reservation/NetEffectiveCost"

	ColRIUnusedUpfront      = "reservation/UnusedAmortizedUpfrontFeeForBillingPeriod"
	ColRINetUnusedUpfront   = "reservation/NetUnusedAmortizedUpfrontFeeForBillingPeriod"
	ColRIUnusedRecurring    = "reservation/UnusedRecurringFee"
	ColRINetUnusedRecurring = "reservation/NetUnusedRecurringFee"
	ColSPEffectiveCost      = "savingsPlan/SavingsPlanEffectiveCost"
	ColSPNetEffectiveCost   = "savingsPlan/NetSavingsPlanEffectiveCost"
	ColSPTotalCommitment    = "savingsPlan/TotalCommitmentToDate"
	ColSPUsedCommitment     = "savingsPlan/UsedCommitment"
	ColTagK8sServiceName    = "resourceTags/user:kubernetes.io/service-name"
	ColTagEnvironment       = "resourceTags/user:environment"
)

// Line item types with a dedicated amortization rule.
const (
	LineItemSavingsPlanCoveredUsage = "SavingsPlanCoveredUsage"
	LineItemSavingsPlanRecurringFee = "SavingsPlanRecurringFee"
	LineItemSavingsPlanNegation     = "SavingsPlanNegation"
	LineItemSavingsPlanUpfrontFee   = "SavingsPlanUpfrontFee"
	LineItemDiscountedUsage         = "DiscountedUsage"
	LineItemRIFee                   = "RIFee"
	LineItemFee                     = "Fee"
)

// LineItem is one CUR row keyed by column name.
type LineItem map[string]string

// Get returns the value of a column, or "" when the column is absent.
func (l LineItem) Get(column string) string {
	return l[column]
}

// Has reports whether the column was present in the report header.
func (l LineItem) Has(column string) bool {
	_, ok := l[column]
	return ok
}

// FirstNonEmpty returns the first non-empty value among the given columns.
// It returns the column that matched, its value, and false when every
// column is absent or empty.
func (l LineItem) FirstNonEmpty(columns ...string) (string, string, bool) {
	for _, c := range columns {
		if v := l[c]; v != "" {
			return c, v, true
		}
	}
	return "", "", false
}
