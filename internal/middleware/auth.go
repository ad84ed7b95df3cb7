package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "blogicum-api"
	tokenAudience = "blogicum-client"
	// TokenCookie is the cookie consulted when no Authorization header is sent.
	TokenCookie = "token"
)

var (
	ErrMissingToken = errors.New("token required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Authenticator validates bearer tokens issued by the external auth
// subsystem and exposes the requester identity to handlers.
type Authenticator struct {
	secret   []byte
	rdb      *redis.Client
	loginURL string
}

// NewAuthenticator creates an Authenticator. rdb may be nil, in which case
// revocation is not checked.
func NewAuthenticator(secret string, rdb *redis.Client, loginURL string) *Authenticator {
	return &Authenticator{secret: []byte(secret), rdb: rdb, loginURL: loginURL}
}

// IssueToken signs a token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseToken validates raw and returns the user id in its subject.
func (a *Authenticator) ParseToken(ctx context.Context, raw string) (uint, error) {
	if raw == "" {
		return 0, ErrMissingToken
	}
	claims, err := a.parse(raw)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}

	if a.rdb != nil && claims.ID != "" {
		n, err := a.rdb.Exists(ctx, revokedKey(claims.ID)).Result()
		if err != nil {
			// The store being down must not lock everyone out.
			observability.RedisErrors.WithLabelValues("token_revocation_check").Inc()
			Logger.WarnContext(ctx, "token revocation check failed", "error", err)
		} else if n > 0 {
			return 0, ErrRevokedToken
		}
	}

	return uint(userID), nil
}

// Revoke blacklists raw until it would have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, raw string) error {
	if a.rdb == nil {
		return errors.New("redis client is nil")
	}
	claims, err := a.parse(raw)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := a.rdb.Set(ctx, revokedKey(claims.ID), "1", ttl).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("token_revoke").Inc()
		return err
	}
	return nil
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

func extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.Cookies(TokenCookie)
}

// Optional resolves the requester when a valid token is present and
// otherwise lets the request through as anonymous.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractToken(c)
		if raw == "" {
			return c.Next()
		}
		userID, err := a.ParseToken(c.UserContext(), raw)
		if err == nil {
			c.Locals(LocalUserID, userID)
		}
		return c.Next()
	}
}

// LoginRequired redirects anonymous requesters to the login page with the
// original URL in the next parameter. It expects Optional to have run.
func (a *Authenticator) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) != 0 {
			return c.Next()
		}
		return c.Redirect(a.LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds LOGIN_URL?next=<original>.
func (a *Authenticator) LoginRedirectURL(original string) string {
	sep := "?"
	if strings.Contains(a.loginURL, "?") {
		sep = "&"
	}
	return a.loginURL + sep + url.Values{"next": {original}}.Encode()
}

// UserID returns the authenticated requester id, or 0 for anonymous.
func UserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals(LocalUserID).(uint); ok {
		return uid
	}
	return 0
}
