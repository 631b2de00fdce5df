package repository

import "gorm.io/gorm"

// Pagination describes page-based slicing of list queries.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) apply(query *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return query
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
}
