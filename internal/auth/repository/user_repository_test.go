package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authdomain "storymail-backend/internal/auth/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}))
	return db
}

func TestFindOrCreateByEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, created, err := repo.FindOrCreateByEmail("a@x.com")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)
	// placeholder identity until the user authenticates
	require.Equal(t, "a@x.com", user.Auth0ID)

	again, created, err := repo.FindOrCreateByEmail("a@x.com")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, user.ID, again.ID)
}

func TestUpsertByAuth0ID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	claims := &authdomain.Claims{
		Subject: "auth0|user-1",
		Name:    "Ada",
		Email:   "ada@x.com",
		Picture: "https://cdn/avatar.png",
	}

	user, err := repo.UpsertByAuth0ID(claims)
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Ada", user.Name)

	claims.Name = "Ada L."
	updated, err := repo.UpsertByAuth0ID(claims)
	require.NoError(t, err)
	require.Equal(t, user.ID, updated.ID)
	require.Equal(t, "Ada L.", updated.Name)

	found, err := repo.FindByAuth0ID("auth0|user-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Ada L.", found.Name)
}

func TestFindByAuth0IDMissing(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.FindByAuth0ID("auth0|nope")
	require.NoError(t, err)
	require.Nil(t, user)
}
