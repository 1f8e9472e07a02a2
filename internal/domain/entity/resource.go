package entity

// CloudResource identifies an ARN-addressable AWS resource seen in a report.
type CloudResource struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Blueprint  string `json:"blueprint"`
	Service    string `json:"service"`
	Region     string `json:"region"`
	AccountID  string `json:"account_id"`
}

// ToCatalog converts the resource into the catalog payload, relating it to
// its owning account under relationName.
func (r CloudResource) ToCatalog(relationName string) CatalogEntity {
	e := CatalogEntity{
		Identifier: r.Identifier,
		Title:      r.Title,
		Blueprint:  r.Blueprint,
		Properties: map[string]any{
			"service": r.Service,
			"region":  r.Region,
		},
	}
	if r.AccountID != "" && relationName != "" {
		e.Relations = map[string]any{relationName: r.AccountID}
	}
	return e
}
