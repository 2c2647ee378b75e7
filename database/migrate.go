package database

import (
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/utils"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
var Models = []interface{}{
	&models.Tenant{},
	&models.Profile{},
	&models.WhatsAppInstance{},
	&models.Category{},
	&models.Product{},
	&models.ProductVariation{},
	&models.ProductExtra{},
	&models.Order{},
	&models.OrderItem{},
	&models.OrderItemExtra{},
}

// Migrate creates or updates the schema and the composite indexes the queries rely on.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}

	indexes := []struct {
		model interface{}
		name  string
		sql   string
	}{
		{&models.Order{}, "idx_orders_tenant_status", "CREATE INDEX IF NOT EXISTS idx_orders_tenant_status ON orders (tenant_id, status)"},
		{&models.Order{}, "idx_orders_tenant_created", "CREATE INDEX IF NOT EXISTS idx_orders_tenant_created ON orders (tenant_id, created_at)"},
		{&models.Product{}, "idx_products_tenant_available", "CREATE INDEX IF NOT EXISTS idx_products_tenant_available ON products (tenant_id, is_available)"},
	}
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			// MySQL has no IF NOT EXISTS for indexes; a failure here is not fatal.
			utils.ErrorLogger.Printf("Error creating index %s: %v", idx.name, err)
			continue
		}
		utils.InfoLogger.Printf("Index %s created", idx.name)
	}
	return nil
}
