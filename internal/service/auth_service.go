package service

import (
	"errors"
	"time"

	"impostorhunt/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates guest player identities. Guests are
// anonymous: one token per device session, no account behind it.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GuestLogin mints a fresh guest identity and its token.
func (s *AuthService) GuestLogin() (*model.GuestTokenResponse, error) {
	playerID := "guest_" + uuid.New().String()[:8]

	claims := &model.PlayerClaims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// No expiry - guests keep their identity across games
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.GuestTokenResponse{
		Token:    tokenString,
		PlayerID: playerID,
	}, nil
}

// ValidatePlayerToken validates a guest JWT and returns its claims
func (s *AuthService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
