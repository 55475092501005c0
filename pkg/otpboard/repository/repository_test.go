package repository

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mikepea/otpboard/pkg/otpboard/database"
	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{DSN: filepath.Join(t.TempDir(), "repo.db")})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func setupTestStore(t *testing.T, opts ...Option) (*Store, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return New(db, opts...), db
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func createTestAccount(t *testing.T, s *Store, issuer, name string, tagIDs ...uint) *models.Account {
	t.Helper()
	acc, err := s.Accounts.Create(context.Background(), NewAccount{
		Issuer: issuer,
		Name:   name,
		Secret: "JBSWY3DPEHPK3PXP",
		TagIDs: tagIDs,
	})
	require.NoError(t, err)
	return acc
}

func createTestTag(t *testing.T, s *Store, name string) *models.Tag {
	t.Helper()
	tag, err := s.Tags.Create(context.Background(), name, "")
	require.NoError(t, err)
	return tag
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
