package main

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionTTL    = 30 * 24 * time.Hour
	sessionIssuer = "mystery-message"
)

var errNoSecret = errors.New("JWT_SECRET not set")

// sessionClaims is the payload of the auth cookie.
type sessionClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

func sessionSecret() ([]byte, error) {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		return nil, errNoSecret
	}
	return []byte(s), nil
}

// issueSession signs a session for u valid for ttl and returns the token with its expiry.
func issueSession(u User, ttl time.Duration) (string, time.Time, error) {
	secret, err := sessionSecret()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// verifySession checks signature, algorithm, issuer and expiry.
func verifySession(raw string) (*sessionClaims, error) {
	secret, err := sessionSecret()
	if err != nil {
		return nil, err
	}
	var c sessionClaims
	_, err = jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	if c.UserID == "" {
		return nil, errors.New("session without user id")
	}
	return &c, nil
}
