package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller extracted from an access token.
type Identity struct {
	UserID   string
	Username string
}

type accessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Service) issueAccessToken(userID, username string, now time.Time) (string, error) {
	claims := accessClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyAccessToken validates signature and expiry and returns the
// caller's identity. All failures collapse into ErrUnauthorized; the
// caller never learns why a token was rejected.
func (s *Service) VerifyAccessToken(token string) (*Identity, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// randomToken returns n random bytes hex-encoded. Used for refresh and
// password-reset tokens, which are opaque and stored server-side.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// employeeCodeAlphabet avoids 0/O, 1/I/L and similar pairs so codes
// survive being read aloud.
const employeeCodeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const employeeCodeLength = 8

func generateEmployeeCode() (string, error) {
	b := make([]byte, employeeCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = employeeCodeAlphabet[int(b[i])%len(employeeCodeAlphabet)]
	}
	return string(b), nil
}
