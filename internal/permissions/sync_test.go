package permissions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/database/testutil"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

func TestSyncCatalogIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	require.NoError(t, permissions.SyncCatalog(context.Background(), db))

	var first []models.Permission
	require.NoError(t, db.Order("name").Find(&first).Error)
	require.Len(t, first, 31)

	require.NoError(t, permissions.SyncCatalog(context.Background(), db))

	var second []models.Permission
	require.NoError(t, db.Order("name").Find(&second).Error)
	require.Len(t, second, 31)

	// ids survive the re-sync, so existing grants keep pointing at live rows
	for i := range first {
		require.Equal(t, first[i].ID, second[i].ID)
		require.Equal(t, first[i].Name, second[i].Name)
	}
}
