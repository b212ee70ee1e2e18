package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    &model.User{Email: "ada@wanderwise.test", PasswordHash: "hash", FullName: "Ada", Role: model.RoleUser, IsActive: true},
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    &model.User{Email: "ada@wanderwise.test", PasswordHash: "hash", FullName: "Other Ada", Role: model.RoleUser, IsActive: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepository_Find(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	ctx := context.Background()

	user := createUser(t, conn, "grace", model.RoleAdmin)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace", found.FullName)
	assert.True(t, found.IsAdmin())
	assert.Equal(t, model.Actor{ID: user.ID, Name: "grace"}, found.Actor())

	found, err = repo.FindByEmail(ctx, "GRACE@wanderwise.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.WithTx(conn).FindByEmail(ctx, "nobody@wanderwise.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
