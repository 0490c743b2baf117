package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodhub-api/models"
	"foodhub-api/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	identityKey = "identity"
	// SessionCookie carries the token for browser clients
	SessionCookie = "session"
)

// Identity is the caller as seen by handlers
type Identity struct {
	ID            uint            `json:"id"`
	Email         string          `json:"email"`
	EmailVerified bool            `json:"email_verified"`
	Role          models.UserRole `json:"role"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
}

// SessionResolver turns request credentials into an identity.
// A nil identity with a nil error means the request carries no valid session.
type SessionResolver interface {
	Resolve(r *http.Request) (*Identity, error)
}

type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver issues HS256 session tokens and resolves them back to the current user row
type JWTResolver struct {
	secret []byte
	ttl    time.Duration
	store  *repository.Store
}

func NewJWTResolver(secret []byte, ttl time.Duration, store *repository.Store) *JWTResolver {
	return &JWTResolver{secret: secret, ttl: ttl, store: store}
}

// Issue creates a signed JWT for a given user
func (j *JWTResolver) Issue(user *models.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(j.ttl)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	return token, exp, err
}

// Resolve reads a Bearer token or the session cookie. The user row is reloaded
// so role changes and email verification take effect before the token expires.
func (j *JWTResolver) Resolve(r *http.Request) (*Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return nil, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, nil
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, nil
	}

	user, err := j.store.FindUserByID(r.Context(), uint(userID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Identity{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Role:          user.Role,
		Phone:         user.Phone,
		Address:       user.Address,
	}, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Predicate decides whether a verified identity may proceed
type Predicate func(id *Identity) bool

// HasRole allows members of roles. No roles means any identity.
func HasRole(roles ...models.UserRole) Predicate {
	if len(roles) == 0 {
		return nil
	}
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(id *Identity) bool { return allowed[id.Role] }
}

// Allow resolves the session, rejects missing or unverified identities with 401,
// attaches the identity to the context and then applies pred (403 on refusal).
func Allow(resolver SessionResolver, pred Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request)
		if err != nil {
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if id == nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !id.EmailVerified {
			abort(c, http.StatusUnauthorized, "Email not verified")
			return
		}
		c.Set(identityKey, id)
		if pred != nil && !pred(id) {
			abort(c, http.StatusForbidden, "Forbidden Access - You don't have permission to access this resource")
			return
		}
		c.Next()
	}
}

// Guard enforces that caller has one of the allowed roles
func Guard(resolver SessionResolver, roles ...models.UserRole) gin.HandlerFunc {
	return Allow(resolver, HasRole(roles...))
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// GetIdentity returns the identity attached by Allow, or nil on unguarded routes
func GetIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	if id := GetIdentity(c); id != nil {
		return id.ID
	}
	return 0
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	if id := GetIdentity(c); id != nil {
		return id.Role
	}
	return ""
}
