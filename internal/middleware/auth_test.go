package middleware

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/util"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-test-secret-test-secret"

func token(t *testing.T, id uint, role model.UserRole) string {
	u := &model.User{Email: "u@example.com", Role: role}
	u.ID = id
	tok, err := util.GenerateJWT(u, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

type fakeChecker map[uint]bool

func (f fakeChecker) IsDisabled(id uint) (bool, error) {
	d, ok := f[id]
	if !ok {
		return false, errors.New("not found")
	}
	return d, nil
}

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/optional", TryAuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": util.CurrentUserID(c)})
	})
	auth := r.Group("/", AuthMiddleware(secret), ActiveAccountMiddleware(fakeChecker{1: false, 2: false, 3: true}))
	auth.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	auth.GET("/admin", RoleMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r *gin.Engine, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := setup()
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)
	assert.Equal(t, http.StatusOK, do(r, "/me", token(t, 1, model.Student)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/me?token="+token(t, 1, model.Student), "").Code)
}

func TestDisabledAccountRejected(t *testing.T) {
	r := setup()
	assert.Equal(t, http.StatusForbidden, do(r, "/me", token(t, 3, model.Student)).Code)
}

func TestRoleMiddleware(t *testing.T) {
	r := setup()
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", token(t, 1, model.Student)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", token(t, 2, model.Admin)).Code)
}

func TestTryAuthMiddleware(t *testing.T) {
	r := setup()
	w := do(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":0}`, w.Body.String())

	w = do(r, "/optional", "garbage")
	assert.JSONEq(t, `{"uid":0}`, w.Body.String())

	w = do(r, "/optional", token(t, 7, model.Student))
	assert.JSONEq(t, `{"uid":7}`, w.Body.String())
}
