package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

type ProfileDirectory interface {
	FindProfile(ctx context.Context, id string) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	CreateTenantWithOwner(ctx context.Context, tenant *models.Tenant, owner *models.Profile) error
}

type RegisterRequest struct {
	RestaurantName string `json:"restaurant_name" binding:"required"`
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
}

// AuthService handles dashboard sign-up, login and session resolution.
type AuthService struct {
	dir    ProfileDirectory
	signer *utils.SessionSigner
}

func NewAuthService(dir ProfileDirectory, signer *utils.SessionSigner) *AuthService {
	return &AuthService{dir: dir, signer: signer}
}

// Register creates a tenant with its owner profile and signs the owner in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.Profile, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	_, err := s.dir.FindProfileByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", Conflict("Email já cadastrado")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, "", Upstream("Erro ao verificar email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", Upstream("Erro ao processar senha", err)
	}

	name := strings.TrimSpace(req.RestaurantName)
	tenant := &models.Tenant{
		Name:               name,
		Slug:               Slugify(name) + "-" + uuid.NewString()[:8],
		SubscriptionStatus: models.SubscriptionPending,
	}
	owner := &models.Profile{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RoleOwner,
	}
	if err := s.dir.CreateTenantWithOwner(ctx, tenant, owner); err != nil {
		return nil, "", Upstream("Erro ao criar restaurante", err)
	}

	token, err := s.signer.GenerateToken(owner.ID, owner.TenantID, owner.Role)
	if err != nil {
		return nil, "", Upstream("Erro ao criar sessão", err)
	}
	utils.InfoLogger.WithField("tenant_id", tenant.ID).Infof("tenant registered: %s", tenant.Slug)
	return owner, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Profile, string, error) {
	invalid := Unauthenticated("Email ou senha inválidos")

	profile, err := s.dir.FindProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", Upstream("Erro ao buscar perfil", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", invalid
	}

	token, err := s.signer.GenerateToken(profile.ID, profile.TenantID, profile.Role)
	if err != nil {
		return nil, "", Upstream("Erro ao criar sessão", err)
	}
	return profile, token, nil
}

// Authenticate resolves a session token to its profile. The tenant comes from the stored
// profile, not from the token claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, Unauthenticated("Sessão não informada")
	}
	claims, err := s.signer.ParseToken(token)
	if err != nil {
		return nil, Unauthenticated("Sessão inválida ou expirada")
	}
	profile, err := s.dir.FindProfile(ctx, claims.ProfileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Perfil não encontrado")
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar perfil", err)
	}
	return profile, nil
}

func (s *AuthService) SessionTTL() int {
	return int(s.signer.TTL().Seconds())
}

// Slugify lowercases, strips accents and joins words with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "restaurante"
	}
	return slug
}
