package dto

// ── Shared ──

// PaginationRequest carries page/limit query parameters.
type PaginationRequest struct {
	Page  int `form:"page"  binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetPage returns the page number, defaulting to 1.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetLimit returns the page size, falling back to def.
func (p *PaginationRequest) GetLimit(def int) int {
	if p.Limit <= 0 {
		return def
	}
	return p.Limit
}

// GetOffset returns the row offset for the page.
func (p *PaginationRequest) GetOffset(def int) int {
	return (p.GetPage() - 1) * p.GetLimit(def)
}

// RowError describes one rejected row of a bulk add or file import.
type RowError struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}
