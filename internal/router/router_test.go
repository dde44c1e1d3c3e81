package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

type pathHandler string

func (p pathHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(string(p), func(c *gin.Context) {
		c.String(http.StatusOK, auth.PrincipalFrom(c.Request.Context()))
	})
}

type nopAuditor struct{ reads int }

func (a *nopAuditor) Log(ctx context.Context, action, entityType, entityID string, opts *audit.LogOptions) error {
	a.reads++
	return nil
}

func newTestRouter(t *testing.T) (*Router, *auth.TokenService, *nopAuditor, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("0123456789abcdef0123", "hospital-api", time.Hour)
	authMW := middleware.NewAuthMiddleware(tokens, nil, security.NewBcryptHasher(4))
	auditor := &nopAuditor{}
	reg := prometheus.NewRegistry()

	r := NewRouter(authMW, middleware.NewAuditMiddleware(auditor), Handlers{
		Health:    pathHandler("/health/live"),
		Admission: pathHandler("/admissions/patient/:patientCode"),
		Vaccine:   pathHandler("/vaccines"),
		Report:    pathHandler("/reports/exams-list"),
		Catalog:   pathHandler("/catalogs/ping"),
	}, RouterConfig{
		RateLimit:     100,
		RateBurst:     100,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "hospital_http",
		Registerer:    reg,
	})
	r.Setup()
	return r, tokens, auditor, reg
}

func TestHealthIsPublic(t *testing.T) {
	r, _, _, reg := newTestRouter(t)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	count, err := testutil.GatherAndCount(reg, "hospital_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProtectedRoutesRequireCredentials(t *testing.T) {
	r, tokens, auditor, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/admissions/patient/7", "/api/v1/vaccines", "/api/v1/reports/exams-list", "/api/v1/catalogs/ping"} {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	token, err := tokens.Generate("dr.grey")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admissions/patient/7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dr.grey", w.Body.String())
	assert.Equal(t, 1, auditor.reads)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/vaccines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, auditor.reads, "only clinical routes are access-audited")
}

func TestFailedCredentialsAreRateLimited(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	codes := map[int]int{}
	for i := 0; i < 300; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vaccines", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.SetBasicAuth("intruder", "guess")
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, req)
		codes[w.Code]++
	}

	assert.NotZero(t, codes[http.StatusTooManyRequests])
	assert.Less(t, codes[http.StatusUnauthorized], 300)

	// Another address keeps its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaccines", nil)
	req.RemoteAddr = "198.51.100.4:40000"
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
