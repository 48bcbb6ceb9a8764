package utils

import (
	"errors"
	"os"
	"time"

	"clinicore/config"

	"github.com/golang-jwt/jwt"
)

// verifySecret resolves the signing secret: loaded config first, then the
// environment, then a development fallback (not suitable for production).
func verifySecret() []byte {
	if s := config.AppConfig.VerifyTokenSecret; s != "" {
		return []byte(s)
	}
	if s := os.Getenv("VERIFY_TOKEN_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("clinicore-verify")
}

// GenerateVerifiedPhoneToken creates a short-lived signed token asserting that
// the given phone number completed OTP verification. The token travels back
// through the verification redirect as the "verified" query flag.
func GenerateVerifiedPhoneToken(phoneNumber string) (string, error) {
	claims := jwt.MapClaims{
		"phone": phoneNumber,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(VerifyTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(verifySecret())
}

// VerifiedPhoneFromToken validates a verified-phone token and returns the phone
// number it asserts. An invalid or expired token yields an error.
func VerifiedPhoneFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return verifySecret(), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	phone, ok := claims["phone"].(string)
	if !ok || phone == "" {
		return "", errors.New("token does not contain a valid 'phone' claim")
	}
	return phone, nil
}
