package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order status
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID      string      `gorm:"type:varchar(36);index;not null" json:"tenant_id"`
	CustomerName  string      `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string      `gorm:"type:varchar(30)" json:"customer_phone"`
	Notes         string      `gorm:"type:text" json:"notes"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	AcceptedAt    *time.Time  `json:"accepted_at,omitempty"`
	AcceptedBy    *string     `gorm:"type:varchar(36)" json:"accepted_by,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	CompletedBy   *string     `gorm:"type:varchar(36)" json:"completed_by,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
