package auth

import (
	"errors"
	"fmt"
	"time"

	"toloka2web/config"
	"toloka2web/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the token claims embedded in every issued bearer token.
type Claims struct {
	Username string `json:"username"`
	Roles    string `json:"roles"`
	Typ      string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IssueTokens signs a new access/refresh token pair for the user.
func IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := signToken(user, TokenTypeAccess,
		time.Duration(config.Settings.AccessTokenTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(user, TokenTypeRefresh,
		time.Duration(config.Settings.RefreshTokenTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccessToken signs a single access token for the user.
func IssueAccessToken(user *models.User) (string, error) {
	return signToken(user, TokenTypeAccess,
		time.Duration(config.Settings.AccessTokenTTLHours)*time.Hour)
}

func signToken(user *models.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Roles:    user.Roles,
		Typ:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Settings.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Token parse failures distinguished by the resolver's failure taxonomy.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// ParseToken verifies signature and expiry and returns the claims.
// Expired and otherwise-invalid tokens map to distinct errors.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Settings.JWTSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
