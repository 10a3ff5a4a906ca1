package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	infraRepo "github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	users map[string]*entity.User
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if u, ok := s.users[token]; ok {
		if u.IsBlocked {
			return nil, apperror.ErrAccountBlocked
		}
		return u, nil
	}
	return nil, apperror.ErrInvalidToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Name: "Asha", Role: enum.RoleAdmin}
	biller := &entity.User{ID: uuid.New(), Name: "Ravi", Role: enum.RoleBiller}
	blocked := &entity.User{ID: uuid.New(), Name: "Old", Role: enum.RoleBiller, IsBlocked: true}
	auth := stubAuthenticator{users: map[string]*entity.User{
		"admin-token":   admin,
		"biller-token":  biller,
		"blocked-token": blocked,
	}}

	router := gin.New()
	router.GET("/me", AuthMiddleware(auth, "token"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet(UserIDKey), "role": c.MustGet(UserRoleKey)})
	})
	router.GET("/admin", AuthMiddleware(auth, "token"), RequireRole(enum.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", "/me", func(r *http.Request) {}, http.StatusUnauthorized},
		{"cookie", "/me", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "token", Value: "biller-token"})
		}, http.StatusOK},
		{"bearer header", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer biller-token")
		}, http.StatusOK},
		{"unknown token", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer nope")
		}, http.StatusUnauthorized},
		{"blocked user", "/me", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer blocked-token")
		}, http.StatusUnauthorized},
		{"biller on admin route", "/admin", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer biller-token")
		}, http.StatusUnauthorized},
		{"admin on admin route", "/admin", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer admin-token")
		}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"})
		req.Header.Set("Authorization", "Bearer biller-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(enum.RoleAdmin), decode(t, w)["role"])
	})

	t.Run("insufficient role message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer biller-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, apperror.ErrInsufficientRole.Message, decode(t, w)["message"])
	})
}

func TestUserRateLimiter(t *testing.T) {
	rl := NewUserRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	defer rl.Stop()

	alice, bob := uuid.New(), uuid.New()
	router := gin.New()
	router.GET("/ping", func(c *gin.Context) {
		if c.GetHeader("X-User") == "bob" {
			c.Set(UserIDKey, bob)
		} else {
			c.Set(UserIDKey, alice)
		}
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusOK, call("bob"), "limits are per user")
	assert.Equal(t, 2, rl.ActiveKeys())
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(100, 60)
	assert.InDelta(t, 100.0/60.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 100, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFrom(0, 0))
}

func TestIdempotency(t *testing.T) {
	repo := infraRepo.NewIdempotencyRepository(testutil.NewDB(t))
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	calls := 0
	router := gin.New()
	router.POST("/invoice/", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
	}, Idempotency(IdempotencyConfig{Repo: repo, Now: func() time.Time { return now }}), func(c *gin.Context) {
		calls++
		if c.GetHeader("X-Fail") != "" {
			c.JSON(http.StatusBadRequest, gin.H{"call": calls})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	post := func(key, body string, fail bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/invoice/", bytes.NewBufferString(body))
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		if fail {
			req.Header.Set("X-Fail", "1")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := post("k1", `{"a":1}`, false)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := post("k1", `{"a":1}`, false)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(ReplayedHeader))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls, "the handler must not run again")

	conflict := post("k1", `{"a":2}`, false)
	assert.Equal(t, http.StatusBadRequest, conflict.Code)
	assert.Equal(t, 1, calls)

	// without a key every request runs
	post("", `{"a":1}`, false)
	post("", `{"a":1}`, false)
	assert.Equal(t, 3, calls)

	// failures are not stored, so a retry runs the handler
	assert.Equal(t, http.StatusBadRequest, post("k2", `{}`, true).Code)
	assert.Equal(t, http.StatusCreated, post("k2", `{}`, false).Code)
	assert.Equal(t, 5, calls)

	stored, err := repo.GetByKey(context.Background(), "k1", userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "POST /invoice/", stored.Endpoint)
	assert.WithinDuration(t, now.Add(IdempotencyKeyTTL), stored.ExpiresAt, time.Second)
}

func TestIdempotency_RetryWhileFirstRequestRuns(t *testing.T) {
	repo := infraRepo.NewIdempotencyRepository(testutil.NewDB(t))
	userID := uuid.New()

	var calls atomic.Int32
	started := make(chan struct{})
	finish := make(chan struct{})
	router := gin.New()
	router.POST("/invoice/", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
	}, Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		if calls.Add(1) == 1 {
			close(started)
			<-finish
		}
		c.JSON(http.StatusCreated, gin.H{"invoice": "INV-1"})
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/invoice/", bytes.NewBufferString(`{"a":1}`))
		req.Header.Set(IdempotencyKeyHeader, "double-click")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() { firstDone <- post() }()
	<-started

	retry := post()
	assert.Equal(t, http.StatusConflict, retry.Code)

	close(finish)
	first := <-firstDone
	require.Equal(t, http.StatusCreated, first.Code)

	replay := post()
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(ReplayedHeader))
	assert.Equal(t, int32(1), calls.Load(), "only the first request may create the invoice")
}

func TestIdempotency_ExpiredKeyBeforePurge(t *testing.T) {
	repo := infraRepo.NewIdempotencyRepository(testutil.NewDB(t))
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	calls := 0
	router := gin.New()
	router.POST("/invoice/", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
	}, Idempotency(IdempotencyConfig{Repo: repo, Now: func() time.Time { return now }}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/invoice/", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyKeyHeader, "k1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusCreated, post(`{"a":1}`).Code)

	now = now.Add(IdempotencyKeyTTL + time.Minute)
	again := post(`{"a":2}`)
	require.Equal(t, http.StatusCreated, again.Code)
	assert.Empty(t, again.Header().Get(ReplayedHeader))
	assert.Equal(t, 2, calls)

	stored, err := repo.GetByKey(context.Background(), "k1", userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.JSONEq(t, `{"call":2}`, stored.ResponseBody)
	assert.WithinDuration(t, now.Add(IdempotencyKeyTTL), stored.ExpiresAt, time.Second)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	repo := infraRepo.NewIdempotencyRepository(testutil.NewDB(t))
	userID := uuid.New()

	calls := 0
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/invoice/", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
	}, Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("printer on fire")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/invoice/", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "k1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusInternalServerError, post())
	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, 2, calls)
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://pos.example.com"}}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", IdempotencyKeyHeader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://pos.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(IdempotencyKeyHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
