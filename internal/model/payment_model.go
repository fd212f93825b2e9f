package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentTransaction struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId        uuid.UUID `gorm:"type:uuid;index;not null"`
	CompanyId             string    `gorm:"type:varchar(50);index;not null"`
	Amount                float64   `gorm:"type:decimal(10,2);not null"`
	PaymentMethod         string    `gorm:"type:varchar(30);not null"`
	Status                string    `gorm:"type:varchar(20);not null"`
	ExternalTransactionId *string   `gorm:"type:varchar(100)"`
	Message               string    `gorm:"type:text"`
	PaymentDate           time.Time `gorm:"not null"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

type PaymentMethod struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId  string         `gorm:"type:varchar(50);index;not null"`
	Name       string         `gorm:"type:varchar(100);not null"`
	MethodType string         `gorm:"type:varchar(30);not null"`
	Network    string         `gorm:"type:varchar(30)"`
	Masked     string         `gorm:"type:varchar(50)"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	IsDefault  bool           `gorm:"not null;default:false"`
	Status     string         `gorm:"type:varchar(20);not null;default:'active'"`
	LastUsedAt *time.Time     `gorm:"column:last_used_at"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
