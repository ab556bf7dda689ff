package bootstrap

import (
	"testing"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminConfig() *config.Config {
	return &config.Config{
		BootstrapAdmin: true,
		AdminUsername:  "root",
		AdminEmail:     "Root@Example.com",
		AdminPassword:  "Adm1n!Password",
	}
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, EnsureAdmin(adminConfig(), db, bcrypt.MinCost))
	require.NoError(t, EnsureAdmin(adminConfig(), db, bcrypt.MinCost))

	var admins []models.User
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsAdmin)
	assert.Equal(t, "root@example.com", admins[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("Adm1n!Password")))
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	existing := testutil.CreateUser(t, db, "root")

	require.NoError(t, EnsureAdmin(adminConfig(), db, bcrypt.MinCost))

	var stored models.User
	require.NoError(t, db.First(&stored, existing.ID).Error)
	assert.True(t, stored.IsAdmin)
	assert.Equal(t, "not-a-real-hash", stored.Password, "the existing password is kept")
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := adminConfig()
	cfg.BootstrapAdmin = false

	require.NoError(t, EnsureAdmin(cfg, db, bcrypt.MinCost))
	assert.Zero(t, testutil.Count(t, db, &models.User{}))

	cfg.BootstrapAdmin = true
	cfg.AdminPassword = ""
	assert.Error(t, EnsureAdmin(cfg, db, bcrypt.MinCost))
}
