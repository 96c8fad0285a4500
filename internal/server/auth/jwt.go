// Package auth implements the credential primitives of the server:
// signed bearer tokens (sessions and password-reset tokens) and
// bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PurposePasswordReset is the value of the "type" claim carried by
// password-reset tokens. Session tokens carry no "type" claim.
const PurposePasswordReset = "password_reset"

// Claims is the payload of every token issued by the server: the standard
// registered claims (sub = account email, exp, jti) plus an optional purpose
// discriminant.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"type,omitempty"`
}

// TokenService issues and verifies HS256-signed tokens with a process-wide
// secret key loaded once at startup. Rotating the key invalidates every
// previously issued token.
type TokenService struct {
	secretKey []byte
}

func NewTokenService(secretKey []byte) *TokenService {
	return &TokenService{secretKey: secretKey}
}

// Issue signs a token for the given subject that expires after validity.
// purpose is empty for session tokens and PurposePasswordReset for reset
// tokens. Every call embeds a fresh jti, so two tokens with identical
// subject and expiry still differ as raw strings.
func (s *TokenService) Issue(subject string, purpose string, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Purpose: purpose,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses and validates tokenString. It returns common.ErrTokenExpired
// when the expiry has passed and common.ErrInvalidToken for any other defect:
// bad signature, malformed payload, or a signing method other than HS256.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
