package entity

// CostTotals holds the four cost figures summed over a resource's line items.
// Credits are negative and subtract; totals are never clamped.
type CostTotals struct {
	Unblended float64 `json:"unblended_cost"`
	Blended   float64 `json:"blended_cost"`
	Amortized float64 `json:"amortized_cost"`
	OnDemand  float64 `json:"ondemand_cost"`
}

// Add accumulates another set of totals in place.
func (t *CostTotals) Add(o CostTotals) {
	t.Unblended += o.Unblended
	t.Blended += o.Blended
	t.Amortized += o.Amortized
	t.OnDemand += o.OnDemand
}

// CostEntity is the cost rollup of one resource for one billing period.
type CostEntity struct {
	Identifier     string            `json:"identifier"`
	Blueprint      string            `json:"blueprint"`
	Totals         CostTotals        `json:"totals"`
	PayingAccount  string            `json:"paying_account"`
	UsageAccount   string            `json:"usage_account"`
	BillStartDate  string            `json:"bill_start_date"`
	Product        string            `json:"product"`
	ResourceID     string            `json:"resource_id"`
	Operation      string            `json:"operation"`
	Tags           map[string]string `json:"tags,omitempty"`
	LineItemsCount int               `json:"line_items_count"`
}

// ToCatalog converts the rollup into the catalog payload.
func (c CostEntity) ToCatalog() CatalogEntity {
	props := map[string]any{
		"unblendedCost": c.Totals.Unblended,
		"blendedCost":   c.Totals.Blended,
		"amortizedCost": c.Totals.Amortized,
		"ondemandCost":  c.Totals.OnDemand,
		"payingAccount": c.PayingAccount,
		"usageAccount":  c.UsageAccount,
		"billStartDate": c.BillStartDate,
		"product":       c.Product,
		"resourceId":    c.ResourceID,
		"operation":     c.Operation,
	}
	for name, value := range c.Tags {
		props[name] = value
	}
	return CatalogEntity{
		Identifier: c.Identifier,
		Blueprint:  c.Blueprint,
		Properties: props,
	}
}
