package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
	// MaxPage keeps (page-1)*limit far from overflow and skip scans bounded.
	MaxPage = 10000
)

// PageRequest is the page/limit pair accepted by every list operation.
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize clamps the request to 1 <= page <= MaxPage and
// 1 <= limit <= MaxPageLimit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip is the document offset of a normalized request.
func (p PageRequest) Skip() int64 { return int64(p.Page-1) * int64(p.Limit) }

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(p PageRequest, total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
