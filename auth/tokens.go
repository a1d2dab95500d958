package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access from refresh tokens so one can never be
// presented where the other is expected.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the application's JWTs.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret and TTLs.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for a user.
func (t *TokenIssuer) IssueAccess(userID int64) (string, error) {
	return t.sign(userID, TokenKindAccess, t.accessTTL)
}

// IssueRefresh signs a refresh token for a user and returns the token along
// with its expiry, which the caller persists.
func (t *TokenIssuer) IssueRefresh(userID int64) (string, time.Time, error) {
	expiresAt := time.Now().Add(t.refreshTTL)
	token, err := t.sign(userID, TokenKindRefresh, t.refreshTTL)
	return token, expiresAt, err
}

func (t *TokenIssuer) sign(userID int64, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the user ID it was issued
// for. The token must be of the expected kind.
func (t *TokenIssuer) Verify(tokenString string, kind TokenKind) (int64, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("token is not valid")
	}
	if claims.Kind != kind {
		return 0, fmt.Errorf("token kind %q where %q expected", claims.Kind, kind)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject %q: %w", claims.Subject, err)
	}
	return userID, nil
}
