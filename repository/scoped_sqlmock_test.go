package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock
}

// The transition must be one guarded UPDATE: the status precondition and the tenant
// scope live in the WHERE clause, not in a prior read.
func TestTransitionOrder_IssuesGuardedUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAdminRepository(db).Scoped("tenant-1")

	mock.ExpectExec(`UPDATE "orders" SET .*"status"=.* WHERE id = \$\d+ AND tenant_id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.TransitionOrder(context.Background(), "order-1", "pending", map[string]interface{}{
		"status":     "preparing",
		"updated_at": time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder_PropagatesStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAdminRepository(db).Scoped("tenant-1")

	mock.ExpectExec(`UPDATE "orders"`).WillReturnError(assert.AnError)

	_, err := repo.TransitionOrder(context.Background(), "order-1", "pending", map[string]interface{}{"status": "preparing"})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindInstanceByToken_ExactMatchQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAdminRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "whatsapp_instances" WHERE instance_token = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "instance_id", "instance_token", "api_key", "status"}).
			AddRow("i-1", "tenant-1", "uaz-1", "tok-1", "key-1", "connected"))

	inst, err := repo.FindInstanceByToken(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "tenant-1", inst.TenantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
