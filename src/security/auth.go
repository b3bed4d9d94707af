package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrAuthNotConfigured = errors.New("token secret is not configured")

// AuthService validates the HS256 access tokens issued by Supabase. The user id is the
// token's "sub" claim.
type AuthService struct {
	JWTSecret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: secret,
	}
}

// GenerateToken signs a token for userID valid for ttl. The server never issues tokens
// itself; this is used by the CLI and tests.
func (a *AuthService) GenerateToken(userID string, ttl time.Duration) (string, error) {
	if a.JWTSecret == "" {
		return "", ErrAuthNotConfigured
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": "authenticated",
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	if a.JWTSecret == "" {
		return "", ErrAuthNotConfigured
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return "", errors.New("invalid token: 'sub' claim missing or not a string")
		}
		return sub, nil
	}

	return "", errors.New("invalid token")
}
