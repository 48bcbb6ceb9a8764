package utils

import (
	"testing"

	"clinicore/config"

	"github.com/stretchr/testify/require"
)

func TestVerifiedPhoneTokenRoundTrip(t *testing.T) {
	token, err := GenerateVerifiedPhoneToken("+254700000001")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	phone, err := VerifiedPhoneFromToken(token)
	require.NoError(t, err)
	require.Equal(t, "+254700000001", phone)
}

func TestVerifiedPhoneTokenRejectsTampering(t *testing.T) {
	token, err := GenerateVerifiedPhoneToken("+254700000001")
	require.NoError(t, err)

	_, err = VerifiedPhoneFromToken(token + "x")
	require.Error(t, err)

	_, err = VerifiedPhoneFromToken("not-a-token")
	require.Error(t, err)
}

func TestGenerateSecureOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		otp, err := generateSecureOTP(6)
		require.NoError(t, err)
		require.Len(t, otp, 6)
		seen[otp] = true
	}
	// Codes are random, not constant.
	require.Greater(t, len(seen), 1)
}

func TestVerifiedPhoneTokenUsesConfiguredSecret(t *testing.T) {
	config.AppConfig.VerifyTokenSecret = "configured-secret"
	t.Cleanup(func() { config.AppConfig.VerifyTokenSecret = "" })

	token, err := GenerateVerifiedPhoneToken("+254700000001")
	require.NoError(t, err)

	phone, err := VerifiedPhoneFromToken(token)
	require.NoError(t, err)
	require.Equal(t, "+254700000001", phone)

	// A token minted under a different secret no longer verifies.
	config.AppConfig.VerifyTokenSecret = "rotated-secret"
	_, err = VerifiedPhoneFromToken(token)
	require.Error(t, err)
}
