package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "beans"

// Claims is the payload inside every token.
//
// Why carry a SessionID and not just the UserID?
//   - A JWT stays valid until it expires. Logout has to be able to kill it
//     earlier, so every token points at a session row in the snapshot and
//     the middleware checks that the row still exists.
//   - The UserID is still included so logs can name the caller even when
//     the session lookup fails.
type Claims struct {
	UserID    int64     `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for one session.
func GenerateToken(userID int64, sessionID uuid.UUID, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken checks the signature, expiry (against now), issuer and signing
// method, then returns the claims.
func ParseToken(tokenString, secret string, now time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject "none" and asymmetric algs before the key is handed out.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("token has no session")
	}
	return claims, nil
}
