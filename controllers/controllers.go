package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
)

// scoped returns the store bound to the authenticated tenant.
func scoped(c *gin.Context, repo *repository.AdminRepository) *repository.ScopedRepository {
	return repo.Scoped(middlewares.CurrentTenantID(c))
}

// storeError maps a repository error to the client-facing error.
func storeError(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return services.NotFound(notFound)
	}
	return services.Upstream("Erro interno do servidor", err)
}

func bindError(err error) error {
	return services.BadRequest("Dados inválidos: " + err.Error())
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.BadRequest("Parâmetro inválido: " + key)
	}
	return n, nil
}
