package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Empty header", "", http.StatusUnauthorized},
		{"Invalid format", "Token abc", http.StatusUnauthorized},
		{"Empty token", "Bearer ", http.StatusUnauthorized},
		{"Garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			handler := AuthMiddleware(testSecret)
			handler(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_ValidTokenSetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	id := testIdentity()
	token, err := GenerateAccessToken(id, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	AuthMiddleware(testSecret)(c)

	require.False(t, c.IsAborted())
	got, ok := GetIdentity(c)
	require.True(t, ok)
	assert.Equal(t, id.UserID, got.UserID)
	assert.Equal(t, id.Role, got.Role)
	require.NotNil(t, got.MemberID)
	assert.Equal(t, *id.MemberID, *got.MemberID)
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := GenerateRefreshToken(testIdentity(), testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	AuthMiddleware(testSecret)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		identity       *Identity
		roles          []string
		expectedStatus int
	}{
		{"Correct role", &Identity{UserID: 1, Role: RoleAdmin}, []string{RoleAdmin}, http.StatusOK},
		{"One of several roles", &Identity{UserID: 1, Role: RoleTrainer}, []string{RoleAdmin, RoleTrainer}, http.StatusOK},
		{"Missing identity", nil, []string{RoleAdmin}, http.StatusUnauthorized},
		{"Insufficient role", &Identity{UserID: 1, Role: RoleMember}, []string{RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if tt.identity != nil {
				c.Set(identityKey, *tt.identity)
			}
			c.Request = httptest.NewRequest("GET", "/", nil)

			handler := RequireRole(tt.roles...)
			handler(c)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		role           string
		expectedStatus int
	}{
		{RoleAdmin, http.StatusOK},
		{RoleTrainer, http.StatusOK},
		{RoleMember, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Set(identityKey, Identity{UserID: 1, Role: tt.role})
			c.Request = httptest.NewRequest("GET", "/", nil)

			RequireStaff()(c)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"Valid identity", Identity{UserID: 42, Role: RoleAdmin}, true},
		{"Missing identity", nil, false},
		{"Wrong type", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if tt.value != nil {
				c.Set(identityKey, tt.value)
			}
			c.Request = httptest.NewRequest("GET", "/", nil)

			id, ok := GetIdentity(c)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, 42, id.UserID)
			}
		})
	}
}
