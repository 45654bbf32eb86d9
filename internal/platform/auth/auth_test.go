package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	tm, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("Issue and parse", func(t *testing.T) {
		tok, err := tm.Issue("user-1", "")
		require.NoError(t, err)

		claims, err := tm.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, RoleCustomer, claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other, _ := NewTokenManager("other-secret", time.Hour)
		tok, _ := other.Issue("user-1", RoleAdmin)

		_, err := tm.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		short, _ := NewTokenManager("test-secret", -time.Minute)
		tok, _ := short.Issue("user-1", RoleCustomer)

		_, err := tm.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthorizer(t *testing.T) {
	authz, err := NewAuthorizer()
	require.NoError(t, err)

	assert.True(t, authz.Can(RoleAdmin, ResourceOrders, ActionReadAny))
	assert.True(t, authz.Can(RoleAdmin, ResourceProducts, ActionWrite))
	assert.False(t, authz.Can(RoleCustomer, ResourceOrders, ActionReadAny))
	assert.False(t, authz.Can(RoleCustomer, ResourceOrders, ActionUpdateFulfillment))
	assert.False(t, authz.Can("", ResourceProducts, ActionWrite))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm, _ := NewTokenManager("test-secret", time.Hour)
	authz, _ := NewAuthorizer()

	router := gin.New()
	router.GET("/me", Authenticate(tm), func(c *gin.Context) {
		id, _ := GetIdentity(c)
		c.String(http.StatusOK, id.UserID)
	})
	router.GET("/admin", Authenticate(tm), RequirePermission(authz, ResourceOrders, ActionReadAny), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	customerTok, _ := tm.Issue("user-1", RoleCustomer)
	adminTok, _ := tm.Issue("admin-1", RoleAdmin)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"No header", "/me", "", http.StatusUnauthorized},
		{"Bad scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"Garbage token", "/me", "Bearer abc", http.StatusUnauthorized},
		{"Valid customer", "/me", "Bearer " + customerTok, http.StatusOK},
		{"Customer on admin route", "/admin", "Bearer " + customerTok, http.StatusForbidden},
		{"Admin on admin route", "/admin", "Bearer " + adminTok, http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
