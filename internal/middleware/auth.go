// Package middleware provides authentication, logging, metrics and rate limiting middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer is the iss claim of every token this service signs.
	TokenIssuer = "yatube-api"
	// TokenAudience is the aud claim of every token this service signs.
	TokenAudience = "yatube-client"
	// TokenCookie is the cookie that carries the token for browser clients.
	TokenCookie = "token"
	// TokenTTL is how long an issued token stays valid.
	TokenTTL = 7 * 24 * time.Hour

	blacklistPrefix = "blacklist:"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the decoded subset of a token the application relies on.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 token for the user.
func IssueToken(secret string, userID uint, username string, now time.Time) (string, *TokenClaims, error) {
	if secret == "" {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	jti := uuid.NewString()
	exp := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, &TokenClaims{UserID: userID, Username: username, JTI: jti, ExpiresAt: exp}, nil
}

// ParseToken verifies signature, expiry, issuer and audience and returns the claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{UserID: uint(userID)}
	out.Username, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// TokenFromRequest reads a bearer token from the Authorization header, falling back to the token cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(TokenCookie)
}

// IsRevoked reports whether the token id was blacklisted at logout.
// A missing Redis client means revocation is not tracked.
func IsRevoked(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}

// Revoke blacklists the token id until the token would have expired anyway.
func Revoke(ctx context.Context, rdb *redis.Client, claims *TokenClaims) error {
	if rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err()
}

// Authenticate resolves the caller from the request token, if any.
// It never rejects: guards decide what an anonymous caller may do.
func Authenticate(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil || IsRevoked(c.UserContext(), rdb, claims.JTI) {
			return c.Next()
		}

		c.Locals("userID", claims.UserID)
		c.Locals("tokenClaims", claims)
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id, or 0 for guests.
func CurrentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// CurrentClaims returns the verified claims of the request token, if any.
func CurrentClaims(c *fiber.Ctx) *TokenClaims {
	claims, _ := c.Locals("tokenClaims").(*TokenClaims)
	return claims
}
