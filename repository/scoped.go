package repository

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-saas/models"
	"gorm.io/gorm"
)

// ScopedRepository only ever sees rows owned by one tenant. Rows belonging to any other
// tenant behave exactly like missing rows.
type ScopedRepository struct {
	db       *gorm.DB
	tenantID string
}

func (r *ScopedRepository) TenantID() string {
	return r.tenantID
}

func (r *ScopedRepository) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("tenant_id = ?", r.tenantID)
}

func (r *ScopedRepository) GetTenant(ctx context.Context) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", r.tenantID).First(&tenant).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (r *ScopedRepository) UpdateTenant(ctx context.Context, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", r.tenantID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------------------------- orders --------------------------------- */

type OrderFilter struct {
	Status string
	Limit  int
}

func (r *ScopedRepository) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.scope(ctx).
		Preload("Items").
		Preload("Items.Extras").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *ScopedRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.scope(ctx).Preload("Items").Preload("Items.Extras").Order("created_at desc")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// TransitionOrder applies fields in a single UPDATE guarded by the expected current
// status. It reports how many rows matched; zero means the order is missing, foreign or
// no longer in status from.
func (r *ScopedRepository) TransitionOrder(ctx context.Context, id, from string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, r.tenantID, from).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// CreateOrder stores the order with its items and extras in one transaction.
func (r *ScopedRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	order.TenantID = r.tenantID
	for i := range order.Items {
		order.Items[i].TenantID = r.tenantID
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(order).Error
	})
}

/* --------------------------------- catalog --------------------------------- */

// ListAvailableProducts returns what the integration API may show: available products
// ordered by name, with their available variations and extras.
func (r *ScopedRepository) ListAvailableProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.scope(ctx).
		Preload("Category").
		Preload("Variations", "is_available = ?", true).
		Preload("Extras", "is_available = ?", true).
		Where("is_available = ?", true).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ScopedRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.scope(ctx).
		Preload("Category").
		Preload("Variations").
		Preload("Extras").
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ScopedRepository) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.scope(ctx).
		Preload("Category").
		Preload("Variations").
		Preload("Extras").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindAvailableProducts loads available products by id, keyed by id. Unknown, foreign and
// unavailable ids are simply absent from the result.
func (r *ScopedRepository) FindAvailableProducts(ctx context.Context, ids []string) (map[string]models.Product, error) {
	var products []models.Product
	err := r.scope(ctx).
		Preload("Variations", "is_available = ?", true).
		Preload("Extras", "is_available = ?", true).
		Where("id IN ? AND is_available = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ScopedRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	product.TenantID = r.tenantID
	for i := range product.Variations {
		product.Variations[i].TenantID = r.tenantID
	}
	for i := range product.Extras {
		product.Extras[i].TenantID = r.tenantID
	}
	if product.CategoryID != nil {
		if _, err := r.FindCategory(ctx, *product.CategoryID); err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (r *ScopedRepository) UpdateProduct(ctx context.Context, id string, fields map[string]interface{}) error {
	if categoryID, ok := fields["category_id"].(string); ok && categoryID != "" {
		if _, err := r.FindCategory(ctx, categoryID); err != nil {
			return err
		}
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND tenant_id = ?", id, r.tenantID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScopedRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_id = ?", id, r.tenantID).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariation{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", id).Delete(&models.ProductExtra{}).Error
	})
}

func (r *ScopedRepository) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.scope(ctx).Where("is_active = ?", true).Order("sort_order asc, name asc").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ScopedRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.scope(ctx).Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ScopedRepository) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.scope(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *ScopedRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	category.TenantID = r.tenantID
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *ScopedRepository) UpdateCategory(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND tenant_id = ?", id, r.tenantID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory detaches its products before removing it.
func (r *ScopedRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ? AND tenant_id = ?", id, r.tenantID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND tenant_id = ?", id, r.tenantID).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

/* -------------------------------- analytics -------------------------------- */

type StatusCount struct {
	Status string
	Count  int64
}

type TopProduct struct {
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// OrderTimes is the subset of an order the analytics need.
type OrderTimes struct {
	Status      string
	TotalAmount float64
	CreatedAt   time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

func (r *ScopedRepository) CountOrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.scope(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *ScopedRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.scope(ctx).Model(&models.Order{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// Revenue sums completed orders created at or after since (zero time means all time).
func (r *ScopedRepository) Revenue(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	q := r.scope(ctx).Model(&models.Order{}).Where("status = ?", models.OrderCompleted)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&total)
	return total, err
}

func (r *ScopedRepository) OrderTimesSince(ctx context.Context, since time.Time) ([]OrderTimes, error) {
	var rows []OrderTimes
	err := r.scope(ctx).Model(&models.Order{}).
		Select("status, total_amount, created_at, accepted_at, completed_at").
		Where("created_at >= ?", since).
		Order("created_at asc").
		Scan(&rows).Error
	return rows, err
}

func (r *ScopedRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Table("order_items").
		Select("order_items.product_name AS product_name, SUM(order_items.quantity) AS quantity, SUM(order_items.subtotal) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.tenant_id = ? AND orders.created_at >= ? AND orders.status <> ?", r.tenantID, since, models.OrderCancelled).
		Group("order_items.product_name").
		Order("quantity desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
