package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/utils"
)

func newAuthFixture(t *testing.T) (*AuthService, *repository.AdminRepository) {
	t.Helper()
	repo := repository.NewAdminRepository(setupServiceDB(t))
	return NewAuthService(repo, utils.NewSessionSigner("test-secret", time.Hour)), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	owner, token, err := svc.Register(ctx, RegisterRequest{
		RestaurantName: "Pizzaria Bella Napoli",
		FullName:       "Maria Souza",
		Email:          "Maria@Example.com",
		Password:       "segredo123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleOwner, owner.Role)
	assert.Equal(t, "maria@example.com", owner.Email)

	tenant, err := repo.FindTenant(ctx, owner.TenantID)
	require.NoError(t, err)
	assert.Contains(t, tenant.Slug, "pizzaria-bella-napoli-")
	assert.Equal(t, models.SubscriptionPending, tenant.SubscriptionStatus)

	profile, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, profile.ID)

	_, _, err = svc.Login(ctx, "maria@example.com", "errada")
	assert.True(t, IsKind(err, KindUnauthenticated))

	profile, token, err = svc.Login(ctx, " MARIA@example.com ", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, profile.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Register(ctx, RegisterRequest{RestaurantName: "Outro", FullName: "X", Email: "maria@example.com", Password: "segredo123"})
	assert.True(t, IsKind(err, KindConflict))
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.True(t, IsKind(err, KindUnauthenticated))

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, IsKind(err, KindUnauthenticated))

	// Valid signature, profile gone.
	token, err := utils.NewSessionSigner("test-secret", time.Hour).GenerateToken("missing-profile", "t1", models.RoleOwner)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, "Perfil não encontrado", err.Error())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cafe-sao-joao", Slugify("Café São João"))
	assert.Equal(t, "pizza-24h", Slugify("  Pizza 24h!! "))
	assert.Equal(t, "restaurante", Slugify("***"))
}
