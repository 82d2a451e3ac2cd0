package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTTL    = 7 * 24 * time.Hour
	renewWithin = 24 * time.Hour
	NewTokenHdr = "X-New-Token"
	keyIdentity = "identity"
)

// Identity is what a token carries: the member and the session-storage key
// their login is persisted under.
type Identity struct {
	UserID    string
	Name      string
	Admin     bool
	SessionID string
}

func NewToken(secret []byte, id Identity) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   id.UserID,
		"name":  id.Name,
		"admin": id.Admin,
		"sid":   id.SessionID,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}).SignedString(secret)
}

// parse verifies the bearer token and returns its identity and expiry.
func parse(secret []byte, header string) (Identity, *jwt.NumericDate, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, nil, false
	}
	token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, nil, false
	}
	claims := token.Claims.(jwt.MapClaims)
	id := Identity{}
	id.UserID, _ = claims["uid"].(string)
	id.Name, _ = claims["name"].(string)
	id.Admin, _ = claims["admin"].(bool)
	id.SessionID, _ = claims["sid"].(string)
	if id.UserID == "" {
		return Identity{}, nil, false
	}
	exp, _ := claims.GetExpirationTime()
	return id, exp, true
}

// JWTAuth accepts a token only while its session is still persisted, so
// logout revokes every token issued for that session.
func JWTAuth(secret []byte, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, exp, ok := parse(secret, auth)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if _, err := sessions.Load(c.Request.Context(), id.SessionID); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			logger.Warn("session.load_failed", "uid", id.UserID, "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session storage unavailable"})
			return
		}
		c.Set(keyIdentity, id)

		// renew when less than a day is left
		if exp != nil && time.Until(exp.Time) < renewWithin {
			if newToken, err := NewToken(secret, id); err == nil {
				c.Header(NewTokenHdr, newToken)
			}
		}

		c.Next()
	}
}

// OptionalAuth records the caller when the request carries a live token and
// lets anonymous requests through unchanged.
func OptionalAuth(secret []byte, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, _, ok := parse(secret, c.GetHeader("Authorization")); ok {
			if _, err := sessions.Load(c.Request.Context(), id.SessionID); err == nil {
				c.Set(keyIdentity, id)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// Actor returns the identity JWTAuth or OptionalAuth stored, zero when
// absent.
func Actor(c *gin.Context) Identity {
	v, _ := c.Get(keyIdentity)
	id, _ := v.(Identity)
	return id
}
