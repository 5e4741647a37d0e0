package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPRoundTrip(t *testing.T) {
	u := &User{}
	code, err := u.GenerateOTP(OTPVerifyEmail)
	require.NoError(t, err)
	require.Len(t, code, 6)

	now := time.Now()
	assert.True(t, u.CheckOTP(OTPVerifyEmail, code, now))
	assert.False(t, u.CheckOTP(OTPVerifyEmail, "000000", now), "wrong code must not pass unless it collides")
	assert.False(t, u.CheckOTP(OTPResetPassword, code, now), "purposes must not cross over")
}

func TestOTPExpires(t *testing.T) {
	u := &User{}
	code, err := u.GenerateOTP(OTPResetPassword)
	require.NoError(t, err)

	assert.True(t, u.CheckOTP(OTPResetPassword, code, time.Now()))
	assert.False(t, u.CheckOTP(OTPResetPassword, code, time.Now().Add(OTPTTL+time.Second)))
}

func TestOTPClear(t *testing.T) {
	u := &User{}
	code, err := u.GenerateOTP(OTPVerifyEmail)
	require.NoError(t, err)

	u.ClearOTP(OTPVerifyEmail)
	assert.False(t, u.CheckOTP(OTPVerifyEmail, code, time.Now()))
	assert.Empty(t, u.VerifyOTP)
	assert.Nil(t, u.VerifyOTPExpires)
}

func TestOTPOverwrite(t *testing.T) {
	u := &User{}
	first, err := u.GenerateOTP(OTPVerifyEmail)
	require.NoError(t, err)
	second, err := u.GenerateOTP(OTPVerifyEmail)
	require.NoError(t, err)

	now := time.Now()
	if first != second {
		assert.False(t, u.CheckOTP(OTPVerifyEmail, first, now), "old code must die on reissue")
	}
	assert.True(t, u.CheckOTP(OTPVerifyEmail, second, now))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Technology"))
	assert.False(t, ValidCategory("technology"), "vocabulary is case sensitive")
	assert.False(t, ValidCategory("Underwater Basket Weaving"))
}
