package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestSerializableOnPostgres(t *testing.T) {
	// opening the pool does not dial the server
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=receiptly dbname=receiptly sslmode=disable"}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	store := NewStore(db).(*gormStore)
	opts := store.serializable()
	require.Len(t, opts, 1)
	assert.Equal(t, sql.LevelSerializable, opts[0].Isolation)
	assert.False(t, opts[0].ReadOnly)
}

func TestSerializableTxOnSQLite(t *testing.T) {
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "receiptly.db"), false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))

	store := NewStore(db).(*gormStore)
	assert.Empty(t, store.serializable())

	ctx := context.Background()
	kept := &entity.Organization{ID: uuid.New(), Name: "Kept", Slug: "kept", IsActive: true, CreatedBy: "user-1"}
	err = store.WithSerializableTx(ctx, func(ctx context.Context, repos *domainRepo.Repositories) error {
		return repos.Organizations.Create(ctx, kept)
	})
	require.NoError(t, err)

	dropped := &entity.Organization{ID: uuid.New(), Name: "Dropped", Slug: "dropped", IsActive: true, CreatedBy: "user-1"}
	err = store.WithSerializableTx(ctx, func(ctx context.Context, repos *domainRepo.Repositories) error {
		if err := repos.Organizations.Create(ctx, dropped); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	got, err := store.Repos().Organizations.GetByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = store.Repos().Organizations.GetByID(ctx, dropped.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
