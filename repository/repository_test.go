package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-saas/database"
	"github.com/yeremiapane/restaurant-saas/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: "Pizzaria " + slug, Slug: slug, SubscriptionStatus: models.SubscriptionActive}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedOrder(t *testing.T, db *gorm.DB, tenantID, status string) *models.Order {
	t.Helper()
	order := &models.Order{TenantID: tenantID, Status: status, TotalAmount: 42.5, CustomerName: "Ana"}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestAdminRepository_InstanceLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()
	tenant := seedTenant(t, db, "t1")

	inst := &models.WhatsAppInstance{
		TenantID:      tenant.ID,
		InstanceID:    "uaz-1",
		InstanceToken: "token-abc",
		APIKey:        "key-xyz",
		Status:        models.InstanceConnected,
	}
	require.NoError(t, repo.CreateInstance(ctx, inst))

	found, err := repo.FindInstanceByToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, found.TenantID)

	found, err = repo.FindInstanceByAPIKey(ctx, "key-xyz")
	require.NoError(t, err)
	assert.Equal(t, inst.ID, found.ID)

	_, err = repo.FindInstanceByToken(ctx, "token-ABC")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindInstanceByAPIKey(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.DeleteInstanceByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindInstanceByTenant(ctx, tenant.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminRepository_CreateTenantWithOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	tenant := &models.Tenant{Name: "Burger Bar", Slug: "burger-bar"}
	owner := &models.Profile{Email: "dono@burger.bar", PasswordHash: "hash", Role: models.RoleOwner}
	require.NoError(t, repo.CreateTenantWithOwner(ctx, tenant, owner))

	profile, err := repo.FindProfileByEmail(ctx, "dono@burger.bar")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, profile.TenantID)

	dup := &models.Tenant{Name: "Other", Slug: "burger-bar"}
	err = repo.CreateTenantWithOwner(ctx, dup, &models.Profile{Email: "x@y.z", PasswordHash: "h"})
	assert.Error(t, err)

	_, err = repo.FindProfileByEmail(ctx, "x@y.z")
	assert.ErrorIs(t, err, ErrNotFound, "owner must not survive a failed tenant insert")
}

func TestScopedRepository_FindOrderIsTenantScoped(t *testing.T) {
	db := setupTestDB(t)
	admin := NewAdminRepository(db)
	ctx := context.Background()
	t1 := seedTenant(t, db, "t1")
	t2 := seedTenant(t, db, "t2")
	order := seedOrder(t, db, t1.ID, models.OrderPending)

	found, err := admin.Scoped(t1.ID).FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = admin.Scoped(t2.ID).FindOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScopedRepository_TransitionOrderIsConditional(t *testing.T) {
	db := setupTestDB(t)
	admin := NewAdminRepository(db)
	ctx := context.Background()
	t1 := seedTenant(t, db, "t1")
	t2 := seedTenant(t, db, "t2")
	order := seedOrder(t, db, t1.ID, models.OrderPending)
	now := time.Now()
	fields := map[string]interface{}{"status": models.OrderPreparing, "updated_at": now}

	n, err := admin.Scoped(t2.ID).TransitionOrder(ctx, order.ID, models.OrderPending, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "foreign tenant must not match")

	n, err = admin.Scoped(t1.ID).TransitionOrder(ctx, order.ID, models.OrderPending, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = admin.Scoped(t1.ID).TransitionOrder(ctx, order.ID, models.OrderPending, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "second transition from pending must not match")
}

func TestScopedRepository_Catalog(t *testing.T) {
	db := setupTestDB(t)
	admin := NewAdminRepository(db)
	ctx := context.Background()
	t1 := seedTenant(t, db, "t1")
	t2 := seedTenant(t, db, "t2")
	scoped := admin.Scoped(t1.ID)

	category := &models.Category{Name: "Pizzas", IsActive: true}
	require.NoError(t, scoped.CreateCategory(ctx, category))

	products := []*models.Product{
		{Name: "Margherita", Price: 40, IsAvailable: true, CategoryID: &category.ID,
			Variations: []models.ProductVariation{{Name: "Grande", Price: 55, IsAvailable: true}, {Name: "Broto", Price: 25}},
			Extras:     []models.ProductExtra{{Name: "Borda", Price: 8, IsAvailable: true}}},
		{Name: "Calabresa", Price: 45, IsAvailable: true},
		{Name: "Atum", Price: 50, IsAvailable: false},
	}
	for _, p := range products {
		require.NoError(t, scoped.CreateProduct(ctx, p))
	}
	require.NoError(t, admin.Scoped(t2.ID).CreateProduct(ctx, &models.Product{Name: "Alheio", Price: 1, IsAvailable: true}))

	available, err := scoped.ListAvailableProducts(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Calabresa", available[0].Name)
	assert.Equal(t, "Margherita", available[1].Name)
	assert.Len(t, available[1].Variations, 1, "unavailable variation hidden")
	assert.Len(t, available[1].Extras, 1)
	require.NotNil(t, available[1].Category)
	assert.Equal(t, "Pizzas", available[1].Category.Name)

	byID, err := scoped.FindAvailableProducts(ctx, []string{products[0].ID, products[2].ID})
	require.NoError(t, err)
	assert.Contains(t, byID, products[0].ID)
	assert.NotContains(t, byID, products[2].ID)

	foreignCategory := &models.Category{Name: "Alheia"}
	require.NoError(t, admin.Scoped(t2.ID).CreateCategory(ctx, foreignCategory))
	err = scoped.CreateProduct(ctx, &models.Product{Name: "X", Price: 1, CategoryID: &foreignCategory.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, scoped.DeleteCategory(ctx, category.ID))
	p, err := scoped.FindProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Nil(t, p.CategoryID)

	assert.ErrorIs(t, admin.Scoped(t2.ID).DeleteProduct(ctx, products[1].ID), ErrNotFound)
	require.NoError(t, scoped.DeleteProduct(ctx, products[1].ID))
}

func TestScopedRepository_Analytics(t *testing.T) {
	db := setupTestDB(t)
	admin := NewAdminRepository(db)
	ctx := context.Background()
	t1 := seedTenant(t, db, "t1")
	scoped := admin.Scoped(t1.ID)

	order := &models.Order{
		Status:      models.OrderCompleted,
		TotalAmount: 30,
		Items: []models.OrderItem{
			{ProductID: "p1", ProductName: "Coxinha", Quantity: 3, UnitPrice: 10, Subtotal: 30},
		},
	}
	require.NoError(t, scoped.CreateOrder(ctx, order))
	seedOrder(t, db, t1.ID, models.OrderPending)

	counts, err := scoped.CountOrdersByStatus(ctx)
	require.NoError(t, err)
	byStatus := map[string]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, int64(1), byStatus[models.OrderCompleted])
	assert.Equal(t, int64(1), byStatus[models.OrderPending])

	revenue, err := scoped.Revenue(ctx, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, revenue, 0.001)

	top, err := scoped.TopProducts(ctx, time.Now().Add(-time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Coxinha", top[0].ProductName)
	assert.Equal(t, int64(3), top[0].Quantity)

	stored, err := scoped.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, t1.ID, stored.Items[0].TenantID)
}
