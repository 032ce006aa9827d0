package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/config"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) scope(key string, orgID uuid.UUID, userID string) string {
	return orgID.String() + "|" + userID + "|" + key
}

func (r *memoryIdempotencyRepo) GetByKey(_ context.Context, key string, orgID uuid.UUID, userID string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.scope(key, orgID, userID)], nil
}

func (r *memoryIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[r.scope(ikey.Key, ikey.OrganizationID, ikey.UserID)] = ikey
	return nil
}

func (r *memoryIdempotencyRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

// identify stands in for the auth and organization middleware
func identify(orgID uuid.UUID, role enum.MemberRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("organization_id", orgID)
		c.Set("member_role", role)
		c.Next()
	}
}

func TestIdempotencyReplaysOnlySuccess(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	orgID := uuid.New()
	calls := 0
	status := http.StatusBadRequest

	router := gin.New()
	router.POST("/things", identify(orgID, enum.MemberRoleOwner), IdempotencyRequired(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/things", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// failures are not remembered, so the client may retry with the same key
	w := send(`{"a":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.keys)

	status = http.StatusCreated
	w = send(`{"a":1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"call":2}`, w.Body.String())

	w = send(`{"a":1}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"call":2}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 2, calls)

	w = send(`{"a":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRejectsLongKeys(t *testing.T) {
	router := gin.New()
	router.POST("/things", identify(uuid.New(), enum.MemberRoleOwner), IdempotencyRequired(IdempotencyConfig{Repo: newMemoryIdempotencyRepo()}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	req.Header.Set(IdempotencyKeyHeader, strings.Repeat("k", 256))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotencyExpiredKeyRunsAgain(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	orgID := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &entity.IdempotencyKey{
		Key:            "key-1",
		OrganizationID: orgID,
		UserID:         "user-1",
		RequestHash:    fingerprint([]byte("{}")),
		ResponseCode:   http.StatusCreated,
		ResponseBody:   `{"stale":true}`,
		ExpiresAt:      time.Now().Add(-time.Minute),
	}))

	router := gin.New()
	router.POST("/things", identify(orgID, enum.MemberRoleOwner), IdempotencyRequired(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"fresh": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/things", bytes.NewBufferString("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"fresh":true}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role enum.MemberRole
		want int
	}{
		{enum.MemberRoleOwner, http.StatusOK},
		{enum.MemberRoleAdmin, http.StatusOK},
		{enum.MemberRoleMember, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			router := gin.New()
			router.GET("/admin", identify(uuid.New(), tt.role), RequireRole(enum.MemberRoleOwner, enum.MemberRoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewOrganizationRateLimiter(ctx, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Millisecond,
	})

	orgID := uuid.New()
	router := gin.New()
	router.GET("/x", identify(orgID, enum.MemberRoleOwner), rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, rl.ActiveOrganizations())

	time.Sleep(5 * time.Millisecond)
	rl.cleanup()
	assert.Equal(t, 0, rl.ActiveOrganizations())
}

func TestCORSAllowsTenantHeaders(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Organization-ID")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-organization-id")
}
