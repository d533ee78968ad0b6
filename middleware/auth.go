package middleware

import (
	"errors"
	"net/http"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie; the token is never read from headers
const CookieName = "token"

const ctxUserID = "userID"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager signs session tokens and moves them in and out of the
// session cookie.
type TokenManager struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
}

func NewTokenManager(secret string, ttl time.Duration, secureCookie bool) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, secureCookie: secureCookie}
}

// Generate creates a signed JWT for a user id
func (m *TokenManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry and returns the claims
func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Issue signs a token for userID and sets it as the session cookie
func (m *TokenManager) Issue(c *gin.Context, userID string) error {
	token, err := m.Generate(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", "", m.secureCookie, true)
	return nil
}

// Clear expires the session cookie
func (m *TokenManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secureCookie, true)
}

// AuthRequired rejects requests without a valid session cookie and puts
// the caller's id in the context.
func (m *TokenManager) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			apperr.Write(c, apperr.Auth("User not authenticated"))
			return
		}
		claims, err := m.Parse(tokenStr)
		if err != nil {
			apperr.Write(c, apperr.Auth("Invalid or expired token"))
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// SessionFrom returns the caller set by AuthRequired; the zero Session
// means unauthenticated.
func SessionFrom(c *gin.Context) service.Session {
	return service.Session{UserID: c.GetString(ctxUserID)}
}
