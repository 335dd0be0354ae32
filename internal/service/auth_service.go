package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/rosterline/rosterline-backend/internal/config"
)

// AuthService verifies bearer tokens issued by the external auth system
// and extracts the member identity. Token issuance, registration and login
// live outside this service.
type AuthService interface {
	ValidateToken(tokenString string) (*jwt.Token, error)
	GetMemberIDFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	secret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) AuthService {
	return &authService{secret: []byte(cfg.JWTSecret)}
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token, nil
}

func (s *authService) GetMemberIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	memberID, ok := claims["sub"].(string)
	if !ok || memberID == "" {
		return "", ErrInvalidToken
	}
	return memberID, nil
}
