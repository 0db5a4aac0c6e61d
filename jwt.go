package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrRefreshExpired = errors.New("token can no longer be refreshed")
)

// Claims is the token payload; Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	// OrigIssuedAt is the issue time of the first token of a refresh chain.
	OrigIssuedAt *jwt.NumericDate `json:"orig_iat,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	return id, nil
}

type TokenService struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret []byte, ttl, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, refreshTTL: refreshTTL, now: time.Now}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for u valid for the configured TTL.
func (s *TokenService) Issue(u User) (string, error) {
	now := s.now()
	return s.sign(strconv.FormatInt(u.ID, 10), string(u.Role), now, now)
}

func (s *TokenService) sign(subject, role string, issued, origIssued time.Time) (string, error) {
	claims := Claims{
		Role:         role,
		OrigIssuedAt: jwt.NewNumericDate(origIssued),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) keyFunc(*jwt.Token) (interface{}, error) { return s.secret, nil }

// Verify checks signature and expiry. An expired token's claims are returned with ErrTokenExpired.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh mints a new token from a valid or expired token with a good signature.
// The old token is not blacklisted.
func (s *TokenService) Refresh(raw string) (string, *Claims, error) {
	if raw == "" {
		return "", nil, ErrTokenMissing
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if _, err := claims.UserID(); err != nil {
		return "", nil, err
	}

	orig := claims.IssuedAt
	if claims.OrigIssuedAt != nil {
		orig = claims.OrigIssuedAt
	}
	if orig == nil {
		return "", nil, fmt.Errorf("%w: no issue time", ErrTokenInvalid)
	}
	now := s.now()
	if now.After(orig.Add(s.refreshTTL)) {
		return "", nil, ErrRefreshExpired
	}

	signed, err := s.sign(claims.Subject, claims.Role, now, orig.Time)
	if err != nil {
		return "", nil, err
	}
	fresh, err := s.Verify(signed)
	if err != nil {
		return "", nil, err
	}
	return signed, fresh, nil
}

// Revoke is a no-op: tokens are stateless and discarded by the client.
func (s *TokenService) Revoke(string) {}

// =========================
// Request identity
// =========================

const (
	ctxIdentity     = "identity"
	ctxUser         = "user"
	ctxToken        = "token"
	ctxTokenExpired = "token_expired"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Role   Role
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func CurrentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// AuthMiddleware authenticates the bearer token. On refreshPath an expired token
// passes through unauthenticated so the handler can mint a new one.
func AuthMiddleware(tokens *TokenService, users UserStore, refreshPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		claims, err := tokens.Verify(raw)
		switch {
		case err == nil:
		case errors.Is(err, ErrTokenMissing):
			abortUnauthorized(c, "Authorization Token not found")
			return
		case errors.Is(err, ErrTokenExpired):
			if c.FullPath() == refreshPath {
				c.Set(ctxToken, raw)
				c.Set(ctxTokenExpired, true)
				c.Next()
				return
			}
			abortUnauthorized(c, "Token is Expired")
			return
		default:
			abortUnauthorized(c, "Token is Invalid")
			return
		}

		id, _ := claims.UserID()
		user, err := users.FindByID(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			abortUnauthorized(c, "User not found")
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxToken, raw)
		c.Set(ctxUser, user)
		c.Set(ctxIdentity, Identity{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// Authorize checks the authenticated caller against policy for action on resource.
func Authorize(policy Policy, action Action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok || !policy.Allows(id, action, resource) {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
