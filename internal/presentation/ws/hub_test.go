package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthenticator maps tokens to users; blocked users are rejected the
// way AuthService.Authenticate rejects them.
type stubAuthenticator map[string]*entity.User

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	user, ok := s[token]
	if !ok {
		return nil, apperror.ErrInvalidToken
	}
	if user.IsBlocked {
		return nil, apperror.ErrAccountBlocked
	}
	return user, nil
}

func newTestServer(t *testing.T) (*Hub, stubAuthenticator, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	auth := stubAuthenticator{
		"active-token":  {ID: uuid.New(), Name: "Biller", Role: "biller"},
		"blocked-token": {ID: uuid.New(), Name: "Blocked", Role: "biller", IsBlocked: true},
	}
	router := gin.New()
	router.GET("/ws/counters", ServeWs(hub, auth))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, auth, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/counters?token=" + token
}

func TestServeWs_RejectsMissingAndInvalidToken(t *testing.T) {
	_, _, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWs_RejectsBlockedUser(t *testing.T) {
	hub, _, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "blocked-token"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishTokensReachesClient(t *testing.T) {
	hub, _, srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "active-token"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishTokens("INV-1", []entity.CounterGroup{
		{CounterNo: 1, CounterTokenNumber: 7},
		{CounterNo: 2, CounterTokenNumber: 3},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var events []TokenEvent
	for len(events) < 2 {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev TokenEvent
		require.NoError(t, json.Unmarshal(msg, &ev))
		events = append(events, ev)
	}

	assert.Equal(t, "counter_token", events[0].Type)
	assert.Equal(t, "INV-1", events[0].InvoiceNumber)
	assert.Equal(t, 1, events[0].CounterNo)
	assert.Equal(t, 7, events[0].TokenNumber)
	assert.Equal(t, 2, events[1].CounterNo)
}

func TestHub_PublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.PublishTokens("INV", []entity.CounterGroup{{CounterNo: 1, CounterTokenNumber: i}})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishTokens blocked")
	}
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	router := gin.New()
	router.GET("/ws/counters", ServeWs(hub, stubAuthenticator{
		"active-token": {ID: uuid.New(), Role: "biller"},
	}))
	srv := httptest.NewServer(router)
	defer srv.Close()

	served := make(chan struct{})
	go func() {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "active-token"), nil)
		if err == nil {
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			_, _, _ = conn.ReadMessage()
			conn.Close()
		}
		close(served)
	}()
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("connecting to a stopped hub blocked")
	}

	assert.Equal(t, 0, hub.ClientCount())
}
