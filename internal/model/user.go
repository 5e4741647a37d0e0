package model

import (
	"time"

	"gorm.io/datatypes"

	"discussify/internal/pkg"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Categories is the fixed tag vocabulary shared by community categories and
// user interests.
var Categories = []string{
	"Technology", "Gaming", "Sports", "Music", "Art", "Education",
	"Science", "Business", "Health", "Food", "Travel", "Fashion",
	"Entertainment", "Books", "Photography", "Other",
}

func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint64                      `gorm:"primaryKey" json:"id"`
	Username  string                      `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email     string                      `gorm:"uniqueIndex;size:64;not null" json:"email"`
	Password  string                      `gorm:"size:255;not null" json:"-"`
	Bio       string                      `gorm:"size:500" json:"bio"`
	Avatar    string                      `gorm:"size:255" json:"avatar"`
	Interests datatypes.JSONSlice[string] `json:"interests"`
	Role      string                      `gorm:"size:16;not null;default:user" json:"role"`

	IsActive        bool `gorm:"not null;default:true" json:"is_active"`
	IsEmailVerified bool `gorm:"not null;default:false" json:"is_email_verified"`

	VerifyOTP        string     `gorm:"size:6" json:"-"`
	VerifyOTPExpires *time.Time `json:"-"`
	ResetOTP         string     `gorm:"size:6" json:"-"`
	ResetOTPExpires  *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OTPTTL is the validity window of a one-time code.
const OTPTTL = 10 * time.Minute

type OTPPurpose string

const (
	OTPVerifyEmail   OTPPurpose = "verify-email"
	OTPResetPassword OTPPurpose = "reset-password"
)

// GenerateOTP puts a fresh 6-digit code on the user for the given purpose,
// overwriting any prior one. The caller persists the user afterwards.
func (u *User) GenerateOTP(purpose OTPPurpose) (string, error) {
	code, err := pkg.RandDigits(6)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(OTPTTL)
	switch purpose {
	case OTPResetPassword:
		u.ResetOTP = code
		u.ResetOTPExpires = &expires
	default:
		u.VerifyOTP = code
		u.VerifyOTPExpires = &expires
	}
	return code, nil
}

// CheckOTP reports whether code is the stored, unexpired code for purpose.
func (u *User) CheckOTP(purpose OTPPurpose, code string, now time.Time) bool {
	var stored string
	var expires *time.Time
	switch purpose {
	case OTPResetPassword:
		stored, expires = u.ResetOTP, u.ResetOTPExpires
	default:
		stored, expires = u.VerifyOTP, u.VerifyOTPExpires
	}
	if stored == "" || expires == nil {
		return false
	}
	if now.After(*expires) {
		return false
	}
	return stored == code
}

// ClearOTP invalidates the code for purpose. Called after any check, so a
// code is single-use regardless of the outcome.
func (u *User) ClearOTP(purpose OTPPurpose) {
	switch purpose {
	case OTPResetPassword:
		u.ResetOTP = ""
		u.ResetOTPExpires = nil
	default:
		u.VerifyOTP = ""
		u.VerifyOTPExpires = nil
	}
}
