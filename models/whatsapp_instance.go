package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Instance status
const (
	InstanceCreated      = "created"
	InstanceConnecting   = "connecting"
	InstanceConnected    = "connected"
	InstanceDisconnected = "disconnected"
)

// WhatsAppInstance mirrors the tenant's instance on the Uazapi gateway.
// InstanceToken and APIKey are bearer secrets and never leave the API as JSON.
type WhatsAppInstance struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID      string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"tenant_id"`
	InstanceID    string    `gorm:"type:varchar(100);not null" json:"instance_id"`
	InstanceName  string    `gorm:"type:varchar(255)" json:"instance_name"`
	InstanceToken string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	APIKey        string    `gorm:"column:api_key;type:varchar(255);uniqueIndex;not null" json:"-"`
	Status        string    `gorm:"type:varchar(20);not null;default:'created'" json:"status"`
	PhoneNumber   string    `gorm:"type:varchar(30)" json:"phone_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (WhatsAppInstance) TableName() string {
	return "whatsapp_instances"
}

func (w *WhatsAppInstance) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
