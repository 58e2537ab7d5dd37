package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
)

func hashed(t *testing.T, password string) *string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(hash)
	return &s
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUsers, *fakeLogs) {
	t.Helper()
	users := newFakeUsers(
		&models.User{ID: studentID, Email: "ana@campus.edu", Name: "Ana", Role: models.RoleStudent, PasswordHash: hashed(t, "secreto123")},
		&models.User{ID: teacherID, Email: "prof@campus.edu", Name: "Prof", Role: models.RoleTeacher},
	)
	logs := &fakeLogs{}
	svc := NewAuthService(users, testSessions(), NewSystemLogService(logs, nil), nil, nil)
	return svc, users, logs
}

func TestAuthServiceLogin(t *testing.T) {
	svc, users, logs := newAuthFixture(t)

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@campus.edu", Password: "secreto123", IP: "10.1.1.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleStudent, session.User.Role)
	assert.NotNil(t, users.items[studentID].LastLogin)
	assert.Equal(t, []string{models.ActionLogin}, logs.actions())
	assert.Equal(t, "10.1.1.1", logs.entries[0].IPAddress)
}

func TestAuthServiceLoginNormalisesEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "  Ana@Campus.EDU ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, studentID, session.User.ID)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _, logs := newAuthFixture(t)
	ctx := context.Background()

	for name, req := range map[string]models.LoginRequest{
		"wrong password": {Email: "ana@campus.edu", Password: "nope"},
		"unknown email":  {Email: "nadie@campus.edu", Password: "secreto123"},
		"no password":    {Email: "prof@campus.edu", Password: "whatever"},
	} {
		_, err := svc.Login(ctx, req)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials), name)
	}

	_, err := svc.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, logs.actions())
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	ctx := context.Background()
	actor := Actor{Claims: claimsFor(studentID, models.RoleStudent)}

	err := svc.ChangePassword(ctx, actor, models.ChangePasswordRequest{OldPassword: "mal", NewPassword: "nuevo-secreto"})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "old_password", appErr.Field)

	require.NoError(t, svc.ChangePassword(ctx, actor, models.ChangePasswordRequest{OldPassword: "secreto123", NewPassword: "nuevo-secreto"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*users.items[studentID].PasswordHash), []byte("nuevo-secreto")))

	google := Actor{Claims: claimsFor(teacherID, models.RoleTeacher)}
	require.NoError(t, svc.ChangePassword(ctx, google, models.ChangePasswordRequest{NewPassword: "primera-clave"}))
	assert.NotNil(t, users.items[teacherID].PasswordHash)
}

func TestAuthServiceMeAndProfile(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Me(ctx, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Me(ctx, claimsFor("deleted-user", models.RoleStudent))
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	user, err := svc.UpdateProfile(ctx, claimsFor(studentID, models.RoleStudent), models.UpdateProfileRequest{
		Name:      strPtr("Ana María"),
		AvatarURL: strPtr("https://cdn.campus.edu/ana.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", user.Name)
	assert.Equal(t, "https://cdn.campus.edu/ana.png", *user.AvatarURL)
}
