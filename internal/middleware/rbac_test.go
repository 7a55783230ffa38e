package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

func authAs(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestRBACAdminOnlyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		claims *models.JWTClaims
		want   int
	}{
		{"admin allowed", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}, http.StatusOK},
		{"auditor forbidden", &models.JWTClaims{UserID: "user-1", Role: models.RoleUser}, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(authAs(tc.claims))
			// mirrors the wiring for statistics and export creation
			r.GET("/stats/summary", RBAC(string(models.RoleAdmin)), okHandler)
			r.POST("/exports", RBAC(string(models.RoleAdmin)), okHandler)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/summary", nil))
			assert.Equal(t, tc.want, rec.Code)

			rec = httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exports", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRBACSelfMatchesPathParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(authAs(&models.JWTClaims{UserID: "user-7", Role: models.RoleUser}))
	r.GET("/users/:id", RBAC(string(models.RoleAdmin), "SELF"), okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-8", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
