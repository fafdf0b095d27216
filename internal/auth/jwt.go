// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the minimum decoded length of the HS256 signing secret.
const MinSecretBytes = 32

// DefaultExpiration is how long an issued token stays valid.
const DefaultExpiration = 24 * time.Hour

var (
	// ErrSecretTooShort is returned when the decoded secret is under MinSecretBytes.
	ErrSecretTooShort = errors.New("jwt secret must decode to at least 32 bytes")
	// ErrTokenInvalid covers bad signatures, wrong algorithms and malformed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-formed token past its exp claim.
	ErrTokenExpired = errors.New("token expired")
)

// TokenIssuer signs and verifies HS256 tokens whose subject is a username.
type TokenIssuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer from a base64-encoded secret.
// A zero expiration selects DefaultExpiration.
func NewTokenIssuer(encodedSecret string, expiration time.Duration) (*TokenIssuer, error) {
	secret, err := base64.StdEncoding.DecodeString(encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jwt secret: %w", err)
	}
	if len(secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &TokenIssuer{secret: secret, expiration: expiration, now: time.Now}, nil
}

// Issue returns a signed token for username.
func (i *TokenIssuer) Issue(username string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(i.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns its subject.
func (i *TokenIssuer) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenInvalid
	}
	return subject, nil
}
