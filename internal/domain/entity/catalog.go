package entity

// CatalogEntity is the wire shape of an entity in the catalog service.
type CatalogEntity struct {
	Identifier string         `json:"identifier"`
	Title      string         `json:"title,omitempty"`
	Blueprint  string         `json:"blueprint,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Relations  map[string]any `json:"relations,omitempty"`
}

// CatalogRule is a single predicate of a catalog search.
type CatalogRule struct {
	Property string `json:"property"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// CatalogQuery is a structured catalog search filter.
type CatalogQuery struct {
	Combinator string        `json:"combinator"`
	Rules      []CatalogRule `json:"rules"`
}

// DateRange is the value of a "between" rule.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}
