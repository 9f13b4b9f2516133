package utils

import (
	"errors"
	"strconv"
	"time"

	"pazar/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "pazar-api"

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer returns an issuer using secret. Zero TTLs fall back to 24h
// for access tokens and 7 days for refresh tokens.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateTokens generates an access token and a refresh token for the given user claims.
func (t *TokenIssuer) GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	if len(t.secret) == 0 {
		return "", "", errors.New("JWT_SECRET not configured")
	}
	now := t.now()

	accessClaims := models.UserClaims{
		RegisteredClaims: t.registered(claims.UserID, now, t.accessTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		Permissions:      claims.Permissions,
		TokenVersion:     claims.TokenVersion,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(t.secret)
	if err != nil {
		return "", "", err
	}

	// Refresh tokens carry no permissions; they are re-derived on refresh.
	refreshClaims := models.UserClaims{
		RegisteredClaims: t.registered(claims.UserID, now, t.refreshTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(t.secret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (t *TokenIssuer) registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

// ParseToken parses and validates a JWT token string.
func (t *TokenIssuer) ParseToken(tokenStr string) (*models.UserClaims, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("JWT_SECRET not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
