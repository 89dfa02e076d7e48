package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(verifier))
	r.GET("/me", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant_id": actor.TenantID, "name": actor.Name})
	})
	return r
}

func TestAuth(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-of-sufficient-length", Issuer: "retail"})
	actor := shared.NewActor(uuid.New(), uuid.New(), "Caixa 1")
	router := newAuthRouter(jwtService)

	valid, err := jwtService.Issue(actor, time.Hour)
	require.NoError(t, err)
	expired, err := jwtService.Issue(actor, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Missing bearer token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "Missing bearer token"},
		{"empty token", "Bearer  ", http.StatusUnauthorized, "Missing bearer token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), actor.TenantID.String())
				assert.Contains(t, w.Body.String(), "Caixa 1")
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestActorFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ActorFrom(c)
	assert.False(t, ok)

	c.Set(ActorKey, "not an actor")
	_, ok = ActorFrom(c)
	assert.False(t, ok)
}
