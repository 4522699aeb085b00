package models

import "github.com/golang-jwt/jwt/v5"

// TokenDetails describes an issued access token.
type TokenDetails struct {
	AccessToken string `json:"access_token"`
	AccessUUID  string `json:"-"`
	AtExpires   int64  `json:"expires_at"`
}

// Claims are the JWT claims of an access token. ID carries the access UUID.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
