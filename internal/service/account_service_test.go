package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Sup3r-Secret-Pass"

func newAccountService(t *testing.T) *AccountService {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return NewAccountService(repository.NewUserRepository(db), bcrypt.MinCost)
}

func TestAccountService_SignupAndAuthenticate(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{Username: "leo", Email: "Leo@Example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "leo@example.com", user.Email)
	assert.NotEqual(t, strongPassword, user.Password)

	got, err := svc.Authenticate(ctx, "leo", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "leo", "wrong")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody", strongPassword)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Signup(ctx, SignupInput{Username: "leo", Email: "other@example.com", Password: strongPassword})
	assertCode(t, err, models.CodeConflict)
}

func TestAccountService_SignupValidation(t *testing.T) {
	svc := newAccountService(t)
	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"reserved username", SignupInput{Username: "follow", Email: "f@example.com", Password: strongPassword}, "username"},
		{"bad email", SignupInput{Username: "leo", Email: "nope", Password: strongPassword}, "email"},
		{"weak password", SignupInput{Username: "leo", Email: "leo@example.com", Password: "short"}, "password"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.input)
			assertFieldError(t, err, tc.field)
		})
	}

	_, err := svc.Signup(context.Background(), SignupInput{Username: "leo"})
	assertCode(t, err, models.CodeValidation)
}

func TestAccountService_SetAdmin(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()
	user, err := svc.Signup(ctx, SignupInput{Username: "leo", Email: "leo@example.com", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, svc.SetAdmin(ctx, "leo", true))
	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	assertCode(t, svc.SetAdmin(ctx, "ghost", true), models.CodeNotFound)
}
