package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID            string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID       string           `gorm:"type:varchar(36);index;not null" json:"order_id"`
	TenantID      string           `gorm:"type:varchar(36);index;not null" json:"-"`
	ProductID     string           `gorm:"type:varchar(36);not null" json:"product_id"`
	VariationID   *string          `gorm:"type:varchar(36)" json:"variation_id,omitempty"`
	ProductName   string           `gorm:"type:varchar(255);not null" json:"product_name"`
	VariationName string           `gorm:"type:varchar(255)" json:"variation_name,omitempty"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	UnitPrice     float64          `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	ExtrasTotal   float64          `gorm:"type:decimal(10,2);not null;default:0.00" json:"extras_total"`
	Subtotal      float64          `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Notes         string           `gorm:"type:text" json:"notes"`
	Extras        []OrderItemExtra `gorm:"foreignKey:OrderItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"extras"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type OrderItemExtra struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderItemID string  `gorm:"type:varchar(36);index;not null" json:"-"`
	ExtraID     string  `gorm:"type:varchar(36);not null" json:"extra_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (e *OrderItemExtra) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
