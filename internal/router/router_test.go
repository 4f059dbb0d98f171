package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stegportal/portal/internal/config"
	mw "github.com/stegportal/portal/internal/middleware"
	"github.com/stegportal/portal/internal/setup"
)

type fakeBackend struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/api/auth/signup" {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"message":"bad json"}`, http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.bodies = append(b.bodies, body)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"token":"tok1"}`))
}

func (b *fakeBackend) received() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.bodies...)
}

func newPortal(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	deps, err := setup.SetupDependencies(&config.Config{Public: config.Public{
		APIBaseURL:     api.URL,
		SignupTimeout:  2 * time.Second,
		FormIdleTTL:    time.Minute,
		AllowedOrigins: []string{"http://localhost:8081"},
		TemplatesPath:  filepath.Join("..", "..", "templates"),
		ContentPath:    filepath.Join("..", "..", "content"),
		StaticPath:     filepath.Join("..", "..", "static"),
	}})
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	portal := httptest.NewServer(SetupRouter(deps))
	t.Cleanup(portal.Close)
	return portal, backend
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func csrfToken(t *testing.T, client *http.Client, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == mw.CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("csrf cookie not set")
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestSignupFlow(t *testing.T) {
	portal, backend := newPortal(t)
	client := newClient(t)

	resp, err := client.Get(portal.URL + "/signup")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	form := url.Values{
		mw.CSRFFormField: {csrfToken(t, client, portal.URL)},
		"fullname":       {"Ahmed Ben Ali"},
		"steg_email":     {"ahmed@steg.com.tn"},
		"password":       {"Secret#2024"},
		"unit":           {"groupement"},
		"unitid":         {"204"},
	}
	resp, err = client.PostForm(portal.URL+"/signup", form)
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.Get(portal.URL + resp.Header.Get("Location"))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Registration Complete!")
	assert.Contains(t, body, "ahmed@steg.com.tn")
	assert.Contains(t, body, "Signed in")

	bodies := backend.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, map[string]any{
		"fullname":   "Ahmed Ben Ali",
		"steg_email": "ahmed@steg.com.tn",
		"password":   "Secret#2024",
		"unit":       "groupement",
		"unitid":     float64(204),
	}, bodies[0])

	resp, err = client.Get(portal.URL + "/metrics")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), `portal_signup_outcomes_total{outcome="success"}`)
}

func TestCSRFRequired(t *testing.T) {
	portal, backend := newPortal(t)
	client := newClient(t)

	resp, err := client.PostForm(portal.URL+"/signup", url.Values{"fullname": {"Ahmed Ben Ali"}})
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, backend.received())
}

func TestRoutes(t *testing.T) {
	portal, _ := newPortal(t)
	client := newClient(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
		location   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "Bienvenue à la STEG"},
		{path: "/about", wantStatus: http.StatusOK, wantBody: "propos"},
		{path: "/signin", wantStatus: http.StatusOK, wantBody: "Matricule"},
		{path: "/signup", wantStatus: http.StatusOK, wantBody: "Select unit type"},
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: "ok"},
		{path: "/static/site.css", wantStatus: http.StatusOK, wantBody: ".navbar"},
		{path: "/SignIn", wantStatus: http.StatusMovedPermanently, location: "/signin"},
		{path: "/SignUp", wantStatus: http.StatusMovedPermanently, location: "/signup"},
		{path: "/About", wantStatus: http.StatusMovedPermanently, location: "/about"},
		{path: "/signout", wantStatus: http.StatusSeeOther, location: "/"},
		{path: "/missing", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := client.Get(portal.URL + tt.path)
			require.NoError(t, err)
			body := readBody(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Contains(t, body, tt.wantBody)
			}
			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}
			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
		})
	}
}

func TestFormRateLimit(t *testing.T) {
	portal, _ := newPortal(t)
	client := newClient(t)

	resp, err := client.Get(portal.URL + "/signin")
	require.NoError(t, err)
	readBody(t, resp)
	token := csrfToken(t, client, portal.URL)

	statuses := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		resp, err := client.PostForm(portal.URL+"/signin", url.Values{
			mw.CSRFFormField: {token},
			"matricule":      {"M1"},
		})
		require.NoError(t, err)
		readBody(t, resp)
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{200, 200, 200, 200, 200, 429, 429}, statuses)
}

func TestUnitChangeDoesNotSubmit(t *testing.T) {
	portal, backend := newPortal(t)
	client := newClient(t)

	resp, err := client.Get(portal.URL + "/signup")
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.PostForm(portal.URL+"/signup/unit", url.Values{
		mw.CSRFFormField: {csrfToken(t, client, portal.URL)},
		"unit":           {"central"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "Centrale B"))
	assert.Empty(t, backend.received())
}
