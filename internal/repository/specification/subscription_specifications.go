package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByCompany scopes a query to one tenant.
type ByCompany struct {
	CompanyId string
}

func (s ByCompany) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ?", s.CompanyId)
}

// StatusIn filters by subscription status.
type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// EndDateBefore selects records whose billing period ends before the cutoff.
// The heartbeat uses it to find subscriptions due for re-evaluation.
type EndDateBefore struct {
	Cutoff time.Time
}

func (s EndDateBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("end_date < ?", s.Cutoff)
}

// ActiveMethods keeps only non-deleted saved payment methods.
type ActiveMethods struct{}

func (s ActiveMethods) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "active")
}
