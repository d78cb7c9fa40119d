package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the opaque player identity carried by guest tokens.
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

type GuestTokenResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}
