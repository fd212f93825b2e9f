package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID matches a single record by primary key.
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy sorts on one column; payment history is served newest-first.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order(s.Field + " DESC")
	}
	return db.Order(s.Field + " ASC")
}

// Pagination windows a listing. A non-positive limit leaves the query
// unwindowed so internal callers can reuse the same listing path.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit <= 0 {
		return db
	}
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy is an equality filter on a single column.
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s = ?", s.Field), s.Value)
}

// Filter is shorthand for FilterBy.
func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
