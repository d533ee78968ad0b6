package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tm *TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", tm.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": SessionFrom(c).UserID})
	})
	return r
}

func TestGenerateAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, false)

	token, err := tm.Generate("65f000000000000000000001")
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "65f000000000000000000001", claims.UserID)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour, false).Generate("u1")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour, false).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute, false)
	token, err := tm.Generate("u1")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour, false).Parse(token)
	assert.Error(t, err)
}

func TestAuthRequiredWithCookie(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, false)
	token, err := tm.Generate("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	protectedRouter(tm).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"u1"}`, w.Body.String())
}

func TestAuthRequiredIgnoresBearerHeader(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, false)
	token, err := tm.Generate("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(tm).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not authenticated", body["message"])
}

func TestAuthRequiredBadToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	w := httptest.NewRecorder()
	protectedRouter(tm).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestIssueAndClearCookie(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, tm.Issue(c, "u1"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	tm.Clear(c)

	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionFromWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, SessionFrom(c).Authenticated())
}
