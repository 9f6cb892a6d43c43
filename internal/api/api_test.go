package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimewatch-io/crimewatch/internal/api"
	"github.com/crimewatch-io/crimewatch/internal/auth"
	"github.com/crimewatch-io/crimewatch/internal/config"
	"github.com/crimewatch-io/crimewatch/internal/crime"
	"github.com/crimewatch-io/crimewatch/internal/database"
	"github.com/crimewatch-io/crimewatch/internal/models"
	"github.com/crimewatch-io/crimewatch/internal/person"
)

type captureMailer struct {
	lastOTP string
}

func (m *captureMailer) SendOTP(_ context.Context, _, otp string) error {
	m.lastOTP = otp
	return nil
}

type testServer struct {
	server *httptest.Server
	mailer *captureMailer
	db     *sql.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, "sqlite"))
	database.SetConnection(db, "sqlite")
	t.Cleanup(func() { database.SetConnection(nil, "") })

	cfg := &config.Config{}
	cfg.APIPort = 0
	cfg.CORS.AllowedOrigins = []string{"http://localhost:*"}

	mailer := &captureMailer{}
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute)
	authSvc := auth.NewService(
		auth.NewUserStore(),
		auth.NewAdminStore(),
		auth.NewUserSessionStore(),
		auth.NewAdminSessionStore(),
		tokens,
		mailer,
	)
	personSvc := person.NewService(person.NewStore())
	crimeSvc := crime.NewService(crime.NewStore(), personSvc)

	app := api.NewApi(cfg, authSvc, tokens, personSvc, crimeSvc, nil)
	server := httptest.NewServer(app.Router)
	t.Cleanup(server.Close)

	return &testServer{server: server, mailer: mailer, db: db}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var parsed map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

func (ts *testServer) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, auth.NewAdminStore().Create(&models.Admin{
		ID:           "admin-1",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    time.Now().UTC(),
	}))
}

func (ts *testServer) registerAndLogin(t *testing.T, email string) models.TokenPair {
	t.Helper()
	resp, _ := ts.request(t, "POST", "/auth/register", "", map[string]string{
		"email": email, "password": "correct horse", "anonymousName": "tipster",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := ts.request(t, "POST", "/auth/login", "", map[string]string{
		"email": email, "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return pairFrom(t, body)
}

func (ts *testServer) adminLogin(t *testing.T, email, password string) models.TokenPair {
	t.Helper()
	resp, body := ts.request(t, "POST", "/auth/admin/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"OTP sent to email"`, string(body["message"]))

	resp, body = ts.request(t, "POST", "/auth/admin/verify-otp", "", map[string]string{
		"email": email, "otp": ts.mailer.lastOTP,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return pairFrom(t, body)
}

func pairFrom(t *testing.T, body map[string]json.RawMessage) models.TokenPair {
	t.Helper()
	var pair models.TokenPair
	require.NoError(t, json.Unmarshal(body["accessToken"], &pair.AccessToken))
	require.NoError(t, json.Unmarshal(body["refreshToken"], &pair.RefreshToken))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func errorFrom(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(body["error"], &msg))
	return msg
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.server.Client().Get(ts.server.URL + "/heartbeat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.request(t, "POST", "/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "correct horse",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.request(t, "POST", "/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.registerAndLogin(t, "alice@example.com")

	resp, body := ts.request(t, "POST", "/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", errorFrom(t, body))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.registerAndLogin(t, "alice@example.com")

	resp, body := ts.request(t, "POST", "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", errorFrom(t, body))
}

func TestRefreshRotatesToken(t *testing.T) {
	ts := newTestServer(t)
	pair := ts.registerAndLogin(t, "alice@example.com")

	resp, body := ts.request(t, "POST", "/auth/refresh", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := pairFrom(t, body)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	resp, body = ts.request(t, "POST", "/auth/refresh", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", errorFrom(t, body))
}

func TestAdminLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAdmin(t, "admin@example.com", "hunter2hunter2")

	pair := ts.adminLogin(t, "admin@example.com", "hunter2hunter2")

	resp, body := ts.request(t, "POST", "/auth/admin/refresh", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pairFrom(t, body)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAdmin(t, "admin@example.com", "hunter2hunter2")

	resp, _ := ts.request(t, "POST", "/auth/admin/login", "", map[string]string{
		"email": "admin@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wrong := "000000"
	if ts.mailer.lastOTP == wrong {
		wrong = "000001"
	}
	resp, body := ts.request(t, "POST", "/auth/admin/verify-otp", "", map[string]string{
		"email": "admin@example.com", "otp": wrong,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid OTP", errorFrom(t, body))
}

func TestCrimeLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAdmin(t, "admin@example.com", "hunter2hunter2")
	userPair := ts.registerAndLogin(t, "alice@example.com")
	adminPair := ts.adminLogin(t, "admin@example.com", "hunter2hunter2")

	// Filing a report requires a login.
	createBody := map[string]interface{}{
		"personName": "John Doe",
		"location":   "Springfield",
		"sources":    []string{"https://news.example.com/article"},
		"tags":       []string{"fraud"},
	}
	resp, _ := ts.request(t, "POST", "/crimes/", "", createBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.request(t, "POST", "/crimes/", userPair.AccessToken, createBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Crime  models.Crime  `json:"crime"`
		Person models.Person `json:"person"`
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &created))
	assert.Equal(t, models.StatusUnverified, created.Crime.VerificationStatus)
	assert.Equal(t, "john-doe", created.Person.Slug)

	// The public profile, feed and per-person crime list show the report.
	resp, _ = ts.request(t, "GET", "/persons/john-doe", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.request(t, "GET", "/persons/feed", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.request(t, "GET", "/crimes/person/john-doe", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The moderation surface is admin-only.
	resp, _ = ts.request(t, "GET", "/crimes/admin/all", userPair.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = ts.request(t, "GET", "/crimes/admin/all", adminPair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	statusBody := map[string]string{"verificationStatus": "VERIFIED"}
	statusPath := fmt.Sprintf("/crimes/admin/%s/status", created.Crime.ID)
	resp, _ = ts.request(t, "PATCH", statusPath, userPair.AccessToken, statusBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = ts.request(t, "PATCH", statusPath, adminPair.AccessToken, statusBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"VERIFIED"`, string(body["verificationStatus"]))

	resp, _ = ts.request(t, "DELETE", "/crimes/admin/"+created.Crime.ID, adminPair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.request(t, "GET", "/crimes/admin/"+created.Crime.ID, adminPair.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPersonByID(t *testing.T) {
	ts := newTestServer(t)
	pair := ts.registerAndLogin(t, "alice@example.com")

	resp, body := ts.request(t, "POST", "/crimes/", pair.AccessToken, map[string]interface{}{
		"personName": "John Doe",
		"sources":    []string{"https://news.example.com/article"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Person models.Person `json:"person"`
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &created))

	resp, body = ts.request(t, "GET", "/persons/id/"+created.Person.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile struct {
		Person models.Person  `json:"person"`
		Crimes []models.Crime `json:"crimes"`
	}
	payload, err = json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &profile))
	assert.Equal(t, "john-doe", profile.Person.Slug)
	assert.Len(t, profile.Crimes, 1)

	resp, _ = ts.request(t, "GET", "/persons/id/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogoutAllEndpoint(t *testing.T) {
	ts := newTestServer(t)
	first := ts.registerAndLogin(t, "alice@example.com")

	resp, body := ts.request(t, "POST", "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := pairFrom(t, body)

	// Requires a valid access token.
	resp, _ = ts.request(t, "POST", "/auth/logout-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.request(t, "POST", "/auth/logout-all", first.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Every grant is revoked, not just the caller's.
	resp, _ = ts.request(t, "POST", "/auth/refresh", "", map[string]string{
		"refreshToken": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = ts.request(t, "POST", "/auth/refresh", "", map[string]string{
		"refreshToken": second.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	pair := ts.registerAndLogin(t, "alice@example.com")

	resp, _ := ts.request(t, "POST", "/upload", pair.AccessToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownPersonIs404(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.request(t, "GET", "/persons/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
