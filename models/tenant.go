package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription status
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

type Tenant struct {
	ID                 string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug               string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	SubscriptionPlan   string    `gorm:"type:varchar(50);not null;default:'basic'" json:"subscription_plan"`
	SubscriptionStatus string    `gorm:"type:varchar(20);not null;default:'pending'" json:"subscription_status"`
	WhatsAppNumber     string    `gorm:"column:whatsapp_number;type:varchar(30)" json:"whatsapp_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
