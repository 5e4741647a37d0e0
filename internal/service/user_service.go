package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/pkg"
	"discussify/internal/repository/mysql"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type UserService struct {
	users         *mysql.UserRepository
	notifications *NotificationService
	sessions      TokenStore
	mailer        Mailer
}

// NewUserService wires the account flows. mailer may be nil; OTP delivery
// then happens through notifications only.
func NewUserService(db *gorm.DB, notifications *NotificationService, sessions TokenStore, mailer Mailer) *UserService {
	return &UserService{
		users:         &mysql.UserRepository{DB: db},
		notifications: notifications,
		sessions:      sessions,
		mailer:        mailer,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Bio       string
	Interests []string
	Avatar    string
}

// Register creates the account, issues a token pair and a verification code.
// The plaintext code is returned so the handler can include it in the
// response for clients without a mail channel.
func (s *UserService) Register(in RegisterInput) (*model.User, *pkg.Pair, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !usernameRe.MatchString(username) {
		return nil, nil, "", apperr.New(apperr.Validation, "username must be 3 to 30 letters, digits or underscores")
	}
	if !emailRe.MatchString(email) {
		return nil, nil, "", apperr.New(apperr.Validation, "invalid email address")
	}
	if len(in.Password) < 6 {
		return nil, nil, "", apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	if len(in.Bio) > 500 {
		return nil, nil, "", apperr.New(apperr.Validation, "bio must be at most 500 characters")
	}
	for _, i := range in.Interests {
		if !model.ValidCategory(i) {
			return nil, nil, "", apperr.Newf(apperr.Validation, "unknown interest %q", i)
		}
	}
	if existing, err := s.users.FindByEmail(email); err != nil {
		return nil, nil, "", err
	} else if existing != nil {
		return nil, nil, "", apperr.New(apperr.Conflict, "an account with that email already exists")
	}
	if existing, err := s.users.FindByUsername(username); err != nil {
		return nil, nil, "", err
	} else if existing != nil {
		return nil, nil, "", apperr.New(apperr.Conflict, "that username is taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, "", err
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Bio:      strings.TrimSpace(in.Bio),
		Avatar:   in.Avatar,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if len(in.Interests) > 0 {
		user.Interests = datatypes.JSONSlice[string](in.Interests)
	}
	code, err := user.GenerateOTP(model.OTPVerifyEmail)
	if err != nil {
		return nil, nil, "", err
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, "", err
	}

	s.notifications.Push(user.ID, model.NotificationOTP,
		"Verify your email",
		"Use the code "+code+" to verify your email address.",
		map[string]any{"purpose": string(model.OTPVerifyEmail)})
	s.sendOTPMail(user.Email, "email verification", code)

	pair, err := s.issueSession(user)
	if err != nil {
		return nil, nil, "", err
	}
	return user, pair, code, nil
}

func (s *UserService) sendOTPMail(to, action, code string) {
	if s.mailer == nil {
		return
	}
	body := pkg.OTPEmailHTML(action, code, model.OTPTTL)
	if err := s.mailer.Send(to, "Your one-time code", body); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("otp mail delivery failed")
	}
}

func (s *UserService) issueSession(user *model.User) (*pkg.Pair, error) {
	pair, err := pkg.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Add(user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Login checks credentials and issues a fresh session, displacing any
// previous one for the account.
func (s *UserService) Login(email, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperr.New(apperr.Unauthorized, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, apperr.New(apperr.Unauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, apperr.New(apperr.Forbidden, "this account is deactivated")
	}
	now := time.Now()
	user.LastLogin = &now
	if err := s.users.Save(user); err != nil {
		return nil, nil, err
	}
	pair, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.sessions.Delete(userID)
}

// Refresh exchanges a refresh token for a new pair and rotates the stored
// session token.
func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "invalid refresh token")
	}
	claims, err := pkg.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Add(claims.UserID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// VerifyEmail consumes the verification code. The code is single-use either
// way: a wrong guess burns it and a fresh one must be requested.
func (s *UserService) VerifyEmail(email, code string) (*model.User, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "account not found")
	}
	if user.IsEmailVerified {
		return nil, apperr.New(apperr.Validation, "email is already verified")
	}
	ok := user.CheckOTP(model.OTPVerifyEmail, code, time.Now())
	user.ClearOTP(model.OTPVerifyEmail)
	if !ok {
		if err := s.users.Save(user); err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.Validation, "invalid or expired code")
	}
	user.IsEmailVerified = true
	if err := s.users.Save(user); err != nil {
		return nil, err
	}
	s.notifications.Push(user.ID, model.NotificationWelcome,
		"Welcome to Discussify",
		"Your email is verified. Join a community and start posting!",
		nil)
	return user, nil
}

// ResendVerifyCode issues a fresh verification code, replacing the old one.
func (s *UserService) ResendVerifyCode(email string) (string, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.New(apperr.NotFound, "account not found")
	}
	if user.IsEmailVerified {
		return "", apperr.New(apperr.Validation, "email is already verified")
	}
	code, err := user.GenerateOTP(model.OTPVerifyEmail)
	if err != nil {
		return "", err
	}
	if err := s.users.Save(user); err != nil {
		return "", err
	}
	s.notifications.Push(user.ID, model.NotificationOTP,
		"Verify your email",
		"Use the code "+code+" to verify your email address.",
		map[string]any{"purpose": string(model.OTPVerifyEmail)})
	s.sendOTPMail(user.Email, "email verification", code)
	return code, nil
}

// ForgotPassword issues a reset code. It reports success whether or not the
// email belongs to an account, so the endpoint cannot be used to enumerate
// registered addresses.
func (s *UserService) ForgotPassword(email string) error {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	code, err := user.GenerateOTP(model.OTPResetPassword)
	if err != nil {
		return err
	}
	if err := s.users.Save(user); err != nil {
		return err
	}
	s.notifications.Push(user.ID, model.NotificationOTP,
		"Password reset",
		"Use the code "+code+" to reset your password.",
		map[string]any{"purpose": string(model.OTPResetPassword)})
	s.sendOTPMail(user.Email, "password reset", code)
	return nil
}

// ResetPassword consumes the reset code and sets the new password. The code
// is cleared on failure too.
func (s *UserService) ResetPassword(email, code, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.NotFound, "account not found")
	}
	ok := user.CheckOTP(model.OTPResetPassword, code, time.Now())
	user.ClearOTP(model.OTPResetPassword)
	if !ok {
		if err := s.users.Save(user); err != nil {
			return err
		}
		return apperr.New(apperr.Validation, "invalid or expired code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	if err := s.users.Save(user); err != nil {
		return err
	}
	s.notifications.Push(user.ID, model.NotificationInfo,
		"Password changed",
		"Your password was reset. If this was not you, contact support.",
		nil)
	return nil
}

// ChangePassword is the logged-in variant; it ends the current session so
// the client logs in again with the new password.
func (s *UserService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.NotFound, "account not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperr.New(apperr.Unauthorized, "wrong password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	return s.sessions.Delete(userID)
}

func (s *UserService) Get(userID uint64) (*model.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "account not found")
	}
	return user, nil
}

type UpdateProfileInput struct {
	Username  *string
	Bio       *string
	Interests []string
	Avatar    string
}

// UpdateProfile applies the provided fields and returns the path of the
// replaced avatar, if any, so the caller can clean the old file up.
func (s *UserService) UpdateProfile(userID uint64, in UpdateProfileInput) (*model.User, string, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, "", err
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !usernameRe.MatchString(username) {
			return nil, "", apperr.New(apperr.Validation, "username must be 3 to 30 letters, digits or underscores")
		}
		if username != user.Username {
			if existing, err := s.users.FindByUsername(username); err != nil {
				return nil, "", err
			} else if existing != nil {
				return nil, "", apperr.New(apperr.Conflict, "that username is taken")
			}
			user.Username = username
		}
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, "", apperr.New(apperr.Validation, "bio must be at most 500 characters")
		}
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Interests != nil {
		for _, i := range in.Interests {
			if !model.ValidCategory(i) {
				return nil, "", apperr.Newf(apperr.Validation, "unknown interest %q", i)
			}
		}
		user.Interests = datatypes.JSONSlice[string](in.Interests)
	}
	oldAvatar := ""
	if in.Avatar != "" {
		oldAvatar = user.Avatar
		user.Avatar = in.Avatar
	}
	if err := s.users.Save(user); err != nil {
		return nil, "", err
	}
	s.notifications.Push(user.ID, model.NotificationInfo,
		"Profile updated",
		"Your profile changes were saved.",
		nil)
	return user, oldAvatar, nil
}
