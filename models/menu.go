package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID    string             `gorm:"type:varchar(36);index;not null" json:"tenant_id"`
	CategoryID  *string            `gorm:"type:varchar(36);index" json:"category_id"`
	Category    *Category          `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Name        string             `gorm:"type:varchar(255);not null" json:"name"`
	Description string             `gorm:"type:text" json:"description"`
	Price       float64            `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string             `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
	IsAvailable bool               `gorm:"not null" json:"is_available"`
	Variations  []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"variations"`
	Extras      []ProductExtra     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"extras"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductVariation replaces the product base price when chosen (size, flavour...).
type ProductVariation struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID   string  `gorm:"type:varchar(36);index;not null" json:"product_id"`
	TenantID    string  `gorm:"type:varchar(36);index;not null" json:"-"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool    `gorm:"not null" json:"is_available"`
}

func (v *ProductVariation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ProductExtra is an add-on priced on top of the product or variation.
type ProductExtra struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID   string  `gorm:"type:varchar(36);index;not null" json:"product_id"`
	TenantID    string  `gorm:"type:varchar(36);index;not null" json:"-"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool    `gorm:"not null" json:"is_available"`
}

func (e *ProductExtra) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
