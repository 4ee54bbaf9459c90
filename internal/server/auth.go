package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/investbadge/internal/common"
)

const tokenIssuer = "investbadge-server"

// signSessionToken issues the bearer token handed out on wallet connect.
// The subject is the session ID.
func signSessionToken(sessionID string, config *common.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(config.GetTokenExpiry())
	claims := jwt.MapClaims{
		"sub": sessionID,
		"iss": tokenIssuer,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}
