package model

// Template kinds. Item templates render content items; site templates hold
// site-chrome fragments. Both kinds share one id namespace.
const (
	TemplateKindItem = "item"
	TemplateKindSite = "site"
)

// Template represents a renderable content fragment in the database.
type Template struct {
	ID   string
	Kind string
	Body string
}

// TemplateRequest represents a template create/update body.
type TemplateRequest struct {
	Body string `json:"body"`
}

// TemplateResponse represents a template in API responses.
type TemplateResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// ClearCacheResponse reports how many cached templates were evicted.
type ClearCacheResponse struct {
	Evicted int `json:"evicted"`
}
