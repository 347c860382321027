// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long a minted seat token stays valid.
const TokenTTL = 12 * time.Hour

// ErrInvalidToken is returned for tokens that fail verification for any
// reason (bad signature, expiry, malformed claims).
var ErrInvalidToken = errors.New("invalid token")

// SeatClaims are the JWT claims binding a user to a table.
type SeatClaims struct {
	UserID  uuid.UUID `json:"uid"`
	TableID uuid.UUID `json:"tid"`
	jwt.RegisteredClaims
}

// Service mints and verifies seat tokens and checks table passwords.
type Service struct {
	secret []byte
}

// NewService creates an auth service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// MintToken issues a signed seat token for the user at the table.
func (s *Service) MintToken(userID, tableID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SeatClaims{
		UserID:  userID,
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Subject:   userID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing seat token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a seat token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil || claims.TableID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a private table's password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
