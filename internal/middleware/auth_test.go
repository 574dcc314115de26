package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
)

const testSecret = "test-secret"

func newTestRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", guard, func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID.Hex(), "role": p.Role, "name": p.Name})
	})
	return r
}

func tokenFor(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	u := models.User{ID: primitive.NewObjectID(), Name: "Ana", Role: role}
	token, err := IssueToken(testSecret, u, ttl, time.Now())
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	return token
}

func probe(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGuardAcceptsValidToken(t *testing.T) {
	r := newTestRouter(AuthGuard(testSecret))
	w := probe(r, "Bearer "+tokenFor(t, models.RoleWaiter, time.Hour))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthGuardRejects(t *testing.T) {
	r := newTestRouter(AuthGuard(testSecret))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": models.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	forgedToken, err := forged.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"missing":      "",
		"no bearer":    tokenFor(t, models.RoleWaiter, time.Hour),
		"expired":      "Bearer " + tokenFor(t, models.RoleWaiter, -time.Minute),
		"wrong secret": "Bearer " + forgedToken,
		"unknown role": "Bearer " + tokenFor(t, "chef", time.Hour),
	}
	for name, header := range cases {
		if w := probe(r, header); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestAdminAuthForbidsOtherRoles(t *testing.T) {
	r := newTestRouter(AdminAuth(testSecret))
	if w := probe(r, "Bearer "+tokenFor(t, models.RoleKitchen, time.Hour)); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := probe(r, "Bearer "+tokenFor(t, models.RoleAdmin, time.Hour)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
