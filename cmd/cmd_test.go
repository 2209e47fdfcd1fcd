package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/user-sync/internal/archive"
	"github.com/gogotex/gogotex/backend/user-sync/internal/config"
	"github.com/gogotex/gogotex/backend/user-sync/internal/deliveries"
	"github.com/gogotex/gogotex/backend/user-sync/internal/events"
	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"github.com/gogotex/gogotex/backend/user-sync/internal/tokens"
	"github.com/gogotex/gogotex/backend/user-sync/internal/users"
	"github.com/gogotex/gogotex/backend/user-sync/internal/usersync"
	"github.com/gogotex/gogotex/backend/user-sync/internal/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("cmd-test-secret"))

func testServices(t *testing.T, jwtSecret string) *services {
	t.Helper()
	cfg := &config.Config{
		Webhook: config.WebhookConfig{Secret: testSecret, Tolerance: 5 * time.Minute},
		Auth:    config.AuthConfig{JWTSecret: jwtSecret},
	}
	svc := &services{
		cfg:        cfg,
		users:      users.NewService(users.NewMemoryUserRepository()),
		deliveries: deliveries.NopStore{},
		archive:    archive.Nop{},
		publisher:  events.NopPublisher{},
	}
	svc.syncer = usersync.NewSyncer(svc.users, nil, svc.publisher)
	svc.verifier = buildVerifier(context.Background(), cfg.Auth)
	return svc
}

func TestRouter_HealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(testServices(t, ""), prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":true`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRouter_NotReadyWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testServices(t, "")
	svc.cfg.Webhook.Secret = ""
	r := newRouter(svc, prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"webhook_secret":false`)
}

func TestRouter_NotReadyWithMalformedSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testServices(t, "")
	svc.cfg.Webhook.Secret = "whsec_not base64!"
	r := newRouter(svc, prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"webhook_secret":false`)
}

func TestRouter_AdminLookupRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testServices(t, "admin-secret")
	_, err := svc.users.CreateUser(context.Background(), &models.User{
		ExternalID: "user_1", Email: "jane@example.com", Username: "jane", FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)
	r := newRouter(svc, prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/user_1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := tokens.GenerateServiceToken("admin-secret", "ops", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user_1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"externalId":"user_1"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/user_missing", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AdminRoutesAbsentWithoutVerifier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(testServices(t, ""), prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/user_1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SignedWebhookAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	r := newRouter(testServices(t, ""), reg)
	body := []byte(`{"type":"user.created","object":"event","data":{"id":"user_1","email_addresses":[{"email_address":"jane@example.com"}],"first_name":"Jane","last_name":"Doe"}}`)

	var hdrs bytes.Buffer
	require.NoError(t, writeSignedHeaders(&hdrs, testSecret, "msg_1", time.Now(), body))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(body))
	for _, line := range strings.Split(strings.TrimSpace(hdrs.String()), "\n") {
		name, value, ok := strings.Cut(line, ": ")
		require.True(t, ok)
		req.Header.Set(name, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User created successfully")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "usersync_webhook_events_total")
}

func TestWriteSignedHeaders(t *testing.T) {
	var out bytes.Buffer
	ts := time.Unix(1700000000, 0)
	require.NoError(t, writeSignedHeaders(&out, testSecret, "msg_1", ts, []byte(`{}`)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, webhook.HeaderID+": msg_1", lines[0])
	assert.Equal(t, webhook.HeaderTimestamp+": 1700000000", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], webhook.HeaderSignature+": v1,"))

	err := writeSignedHeaders(&out, "", "msg_1", ts, []byte(`{}`))
	assert.ErrorIs(t, err, webhook.ErrMissingSecret)

	err = writeSignedHeaders(&out, "whsec_not base64!", "msg_1", ts, []byte(`{}`))
	assert.ErrorIs(t, err, webhook.ErrInvalidSecret)
}

type mapArchive map[string][]byte

func (m mapArchive) Put(ctx context.Context, key string, body []byte) error {
	m[key] = body
	return nil
}

func (m mapArchive) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func TestReplay(t *testing.T) {
	svc := testServices(t, "")
	_, err := svc.users.CreateUser(context.Background(), &models.User{
		ExternalID: "user_1", Email: "jane@example.com", Username: "jane", FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)

	key := archive.Key("msg_9", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	store := mapArchive{key: []byte(`{"type":"user.deleted","object":"event","data":{"id":"user_1","deleted":true}}`)}

	res, err := replay(context.Background(), store, svc.syncer, key)
	require.NoError(t, err)
	assert.Equal(t, usersync.OutcomeDeleted, res.Outcome)

	_, err = replay(context.Background(), store, svc.syncer, "clerk/missing.json")
	assert.Error(t, err)
}
