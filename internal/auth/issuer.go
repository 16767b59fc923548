// Package auth issues and validates wallet session tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// Claims identifies the wallet behind a session token
type Claims struct {
	UserID  string
	Address string
}

// Issuer signs HS256 session tokens for connected wallets
type Issuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewIssuer creates an issuer. duration falls back to 24h when not positive.
func NewIssuer(secret string, duration time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), duration: duration, now: time.Now}, nil
}

// Issue creates a session token for the wallet and returns it with its expiry
func (i *Issuer) Issue(userID, address string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.duration)

	claims := jwt.MapClaims{
		"sub":     userID,
		"address": address,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
		"type":    "wallet",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses a session token and returns its claims
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != "wallet" {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	address, _ := claims["address"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: userID, Address: address}, nil
}
