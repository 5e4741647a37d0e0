package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussify/internal/apperr"
	"discussify/internal/model"
)

func newUserFixture(t *testing.T) (*UserService, *memTokenStore) {
	db := newTestDB(t)
	sessions := newMemTokenStore()
	return NewUserService(db, NewNotificationService(db), sessions, nil), sessions
}

func register(t *testing.T, users *UserService, username string) (*model.User, string) {
	t.Helper()
	user, pair, code, err := users.Register(RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, pair)
	require.Len(t, code, 6)
	return user, code
}

func TestRegisterIssuesSessionAndCode(t *testing.T) {
	users, sessions := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.IsEmailVerified)

	token, err := sessions.Get(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token, "registering logs the account in")

	// the otp landed in the notification inbox too
	list, _, _, err := users.notifications.List(user.ID, false, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, model.NotificationOTP, list[0].Type)
}

func TestRegisterValidation(t *testing.T) {
	users, _ := newUserFixture(t)

	cases := []RegisterInput{
		{Username: "x", Email: "a@b.co", Password: "hunter22"},
		{Username: "has spaces", Email: "a@b.co", Password: "hunter22"},
		{Username: "gopher", Email: "not-an-email", Password: "hunter22"},
		{Username: "gopher", Email: "a@b.co", Password: "short"},
		{Username: "gopher", Email: "a@b.co", Password: "hunter22", Interests: []string{"Nonsense"}},
	}
	for _, in := range cases {
		_, _, _, err := users.Register(in)
		assert.True(t, apperr.Is(err, apperr.Validation), "input %+v", in)
	}
}

func TestRegisterConflicts(t *testing.T) {
	users, _ := newUserFixture(t)
	register(t, users, "gopher")

	_, _, _, err := users.Register(RegisterInput{
		Username: "othername", Email: "gopher@example.com", Password: "hunter22",
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, _, _, err = users.Register(RegisterInput{
		Username: "gopher", Email: "fresh@example.com", Password: "hunter22",
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestLoginDisplacesPreviousSession(t *testing.T) {
	users, sessions := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	first, err := sessions.Get(user.ID)
	require.NoError(t, err)

	// tokens embed issue time at second resolution
	time.Sleep(1100 * time.Millisecond)

	loggedIn, pair, err := users.Login("gopher@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, loggedIn.LastLogin)

	second, err := sessions.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, second)
	assert.NotEqual(t, first, second, "a new login displaces the old session")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users, _ := newUserFixture(t)
	register(t, users, "gopher")

	_, _, err := users.Login("gopher@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
	_, _, err = users.Login("ghost@example.com", "hunter22")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	users, _ := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	user.IsActive = false
	require.NoError(t, users.users.Save(user))

	_, _, err := users.Login("gopher@example.com", "hunter22")
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestVerifyEmail(t *testing.T) {
	users, _ := newUserFixture(t)
	_, code := register(t, users, "gopher")

	verified, err := users.VerifyEmail("gopher@example.com", code)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	// verifying twice is rejected
	_, err = users.VerifyEmail("gopher@example.com", code)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestVerifyEmailBurnsCodeOnFailure(t *testing.T) {
	users, _ := newUserFixture(t)
	_, code := register(t, users, "gopher")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := users.VerifyEmail("gopher@example.com", wrong)
	assert.True(t, apperr.Is(err, apperr.Validation))

	// the real code is spent too; a fresh one must be requested
	_, err = users.VerifyEmail("gopher@example.com", code)
	assert.True(t, apperr.Is(err, apperr.Validation))

	fresh, err := users.ResendVerifyCode("gopher@example.com")
	require.NoError(t, err)
	_, err = users.VerifyEmail("gopher@example.com", fresh)
	require.NoError(t, err)
}

func TestForgotPasswordIsSilentForUnknownEmail(t *testing.T) {
	users, _ := newUserFixture(t)
	register(t, users, "gopher")

	assert.NoError(t, users.ForgotPassword("ghost@example.com"))
	assert.NoError(t, users.ForgotPassword("gopher@example.com"))
}

func TestResetPasswordFlow(t *testing.T) {
	users, _ := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	require.NoError(t, users.ForgotPassword("gopher@example.com"))
	stored, err := users.users.FindByID(user.ID)
	require.NoError(t, err)
	code := stored.ResetOTP
	require.Len(t, code, 6)

	err = users.ResetPassword("gopher@example.com", code, "short")
	assert.True(t, apperr.Is(err, apperr.Validation))

	require.NoError(t, users.ResetPassword("gopher@example.com", code, "newpassword"))

	_, _, err = users.Login("gopher@example.com", "hunter22")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
	_, _, err = users.Login("gopher@example.com", "newpassword")
	require.NoError(t, err)

	// the code was consumed
	err = users.ResetPassword("gopher@example.com", code, "anotherpass")
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestChangePasswordEndsSession(t *testing.T) {
	users, sessions := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	err := users.ChangePassword(user.ID, "wrong", "newpassword")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	require.NoError(t, users.ChangePassword(user.ID, "hunter22", "newpassword"))
	_, err = sessions.Get(user.ID)
	assert.Error(t, err, "changing the password logs the session out")

	_, _, err = users.Login("gopher@example.com", "newpassword")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	users, _ := newUserFixture(t)
	user, _ := register(t, users, "gopher")
	register(t, users, "taken")

	newName := "renamed"
	bio := "likes long walks through goroutine dumps"
	updated, oldAvatar, err := users.UpdateProfile(user.ID, UpdateProfileInput{
		Username:  &newName,
		Bio:       &bio,
		Interests: []string{"Technology", "Books"},
	})
	require.NoError(t, err)
	assert.Empty(t, oldAvatar)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, bio, updated.Bio)
	assert.Len(t, updated.Interests, 2)

	conflicting := "taken"
	_, _, err = users.UpdateProfile(user.ID, UpdateProfileInput{Username: &conflicting})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, _, err = users.UpdateProfile(user.ID, UpdateProfileInput{Interests: []string{"Nope"}})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUpdateProfileReportsReplacedAvatar(t *testing.T) {
	users, _ := newUserFixture(t)
	user, _ := register(t, users, "gopher")

	_, old, err := users.UpdateProfile(user.ID, UpdateProfileInput{Avatar: "uploads/first.png"})
	require.NoError(t, err)
	assert.Empty(t, old)

	_, old, err = users.UpdateProfile(user.ID, UpdateProfileInput{Avatar: "uploads/second.png"})
	require.NoError(t, err)
	assert.Equal(t, "uploads/first.png", old)
}

func TestRefreshRotatesStoredSession(t *testing.T) {
	users, sessions := newUserFixture(t)
	user, pair, _, err := users.Register(RegisterInput{
		Username: "gopher", Email: "gopher@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	fresh, err := users.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	stored, err := sessions.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.AccessToken, stored)

	_, err = users.Refresh("garbage")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
}
