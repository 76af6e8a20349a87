package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tech-dispatch/internal/app"
	"tech-dispatch/internal/config"
	"tech-dispatch/internal/mapview"
	"tech-dispatch/internal/models"
	"tech-dispatch/internal/server"
	"tech-dispatch/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// client keeps the session cookie between requests, like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, cfg *config.Config) (*client, *app.Wire) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	w, err := app.NewWire(context.Background(), cfg, logger)
	require.NoError(t, err)
	return &client{t: t, handler: server.New(w, logger).Handler()}, w
}

func (c *client) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func (c *client) json(method, path string, payload any) *httptest.ResponseRecorder {
	b, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(method, path, "application/json", bytes.NewReader(b))
}

type sessionResponse struct {
	OK                  bool         `json:"ok"`
	Error               string       `json:"error"`
	UsedDefaultLocation bool         `json:"used_default_location"`
	Session             session.View `json:"session"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestServer_IdleSession(t *testing.T) {
	c, _ := newClient(t, config.Default())

	rec := c.do(http.MethodGet, "/api/session", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, session.ConditionIdle, resp.Session.Condition)
	assert.Equal(t, session.MessageIdle, resp.Session.Message)
	assert.NotEmpty(t, c.cookies)
}

func TestServer_SubmitAndReset(t *testing.T) {
	c, _ := newClient(t, config.Default())

	rec := c.json(http.MethodPost, "/api/session/submit", map[string]any{
		"station_name":        "MG Road Fuels",
		"problem_description": "Pump 3 not dispensing",
		"lat":                 12.9716,
		"lon":                 77.5946,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.False(t, resp.UsedDefaultLocation)
	assert.Equal(t, session.ConditionAssigned, resp.Session.Condition)
	assert.Equal(t, "Ravi", resp.Session.Technician)
	assert.Equal(t, "On the way", resp.Session.Status)
	require.NotNil(t, resp.Session.DistanceKm)
	assert.InDelta(t, 0.6966, *resp.Session.DistanceKm, 0.01)
	assert.Equal(t, "MG Road Fuels", resp.Session.Issue.StationName)

	// the same cookie sees the same session
	resp = decode(t, c.do(http.MethodGet, "/api/session", "", nil))
	assert.Equal(t, "Ravi", resp.Session.Technician)

	resp = decode(t, c.do(http.MethodPost, "/api/session/reset", "", nil))
	assert.Equal(t, session.ConditionIdle, resp.Session.Condition)
	assert.Nil(t, resp.Session.Issue)

	resp = decode(t, c.do(http.MethodPost, "/api/session/reset", "", nil))
	assert.Equal(t, session.ConditionIdle, resp.Session.Condition)
}

func TestServer_FormSubmitWithoutLocationUsesDefault(t *testing.T) {
	c, w := newClient(t, config.Default())
	form := url.Values{"station_name": {"Indiranagar"}, "problem_description": {"Card reader down"}}

	rec := c.do(http.MethodPost, "/api/session/submit", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.True(t, resp.UsedDefaultLocation)
	assert.Equal(t, w.DefaultLocation, resp.Session.Issue.Location)
	assert.Equal(t, "Indiranagar", resp.Session.Issue.StationName)
}

func TestServer_FormSubmitWithBlankLocationUsesDefault(t *testing.T) {
	c, w := newClient(t, config.Default())
	form := url.Values{"station_name": {"Indiranagar"}, "lat": {""}, "lon": {"  "}}

	rec := c.do(http.MethodPost, "/api/session/submit", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.True(t, resp.UsedDefaultLocation)
	assert.Equal(t, w.DefaultLocation, resp.Session.Issue.Location)
	assert.Equal(t, "Ravi", resp.Session.Technician)
}

func TestServer_FormSubmitWithNonNumericLocation(t *testing.T) {
	c, _ := newClient(t, config.Default())
	form := url.Values{"lat": {"north"}, "lon": {"77.5946"}}

	rec := c.do(http.MethodPost, "/api/session/submit", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "lat")
}

func TestServer_SubmitAtTechnicianReportsZeroDistance(t *testing.T) {
	c, _ := newClient(t, config.Default())

	rec := c.json(http.MethodPost, "/api/session/submit", map[string]any{"lat": 12.9750, "lon": 77.6000})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var raw struct {
		Session map[string]any `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "Ravi", raw.Session["technician"])
	require.Contains(t, raw.Session, "distance_km")
	assert.Equal(t, 0.0, raw.Session["distance_km"])
}

func TestServer_InvalidCoordinateKeepsSessionUsable(t *testing.T) {
	c, _ := newClient(t, config.Default())
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/session/submit", map[string]any{"lat": 12.9716, "lon": 77.5946}).Code)

	rec := c.json(http.MethodPost, "/api/session/submit", map[string]any{"lat": 123.0, "lon": 77.5946})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).OK)

	resp := decode(t, c.do(http.MethodGet, "/api/session", "", nil))
	assert.Equal(t, "Ravi", resp.Session.Technician)
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	cfg := config.Default()
	alice, w := newClient(t, cfg)
	bob := &client{t: t, handler: alice.handler}

	require.Equal(t, http.StatusOK, alice.json(http.MethodPost, "/api/session/submit", map[string]any{"lat": 12.9716, "lon": 77.5946}).Code)

	resp := decode(t, bob.do(http.MethodGet, "/api/session", "", nil))
	assert.Equal(t, session.ConditionIdle, resp.Session.Condition)
	assert.Equal(t, 2, w.Sessions.Len())
}

func TestServer_StatusChangesAffectNextSubmission(t *testing.T) {
	c, _ := newClient(t, config.Default())
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/submit", "", nil).Code)

	rec := c.json(http.MethodPut, "/api/technicians/Ravi/status", map[string]string{"status": "busy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// existing assignment is not recomputed
	resp := decode(t, c.do(http.MethodGet, "/api/session", "", nil))
	assert.Equal(t, "Ravi", resp.Session.Technician)

	resp = decode(t, c.do(http.MethodPost, "/api/session/submit", "", nil))
	assert.Equal(t, "Kumar", resp.Session.Technician)

	for _, name := range []string{"Kumar", "Suresh"} {
		require.Equal(t, http.StatusOK, c.json(http.MethodPut, "/api/technicians/"+name+"/status", map[string]string{"status": "Busy"}).Code)
	}
	resp = decode(t, c.do(http.MethodPost, "/api/session/submit", "", nil))
	assert.True(t, resp.OK)
	assert.Equal(t, session.ConditionNoTechnician, resp.Session.Condition)
	assert.Nil(t, resp.Session.Assignment)
}

func TestServer_SetStatusErrors(t *testing.T) {
	c, _ := newClient(t, config.Default())

	assert.Equal(t, http.StatusNotFound, c.json(http.MethodPut, "/api/technicians/Nobody/status", map[string]string{"status": "busy"}).Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPut, "/api/technicians/Ravi/status", map[string]string{"status": "asleep"}).Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPut, "/api/technicians/Ravi/status", map[string]string{}).Code)
}

func TestServer_Map(t *testing.T) {
	c, _ := newClient(t, config.Default())

	var fc mapview.FeatureCollection
	require.NoError(t, json.Unmarshal(c.do(http.MethodGet, "/api/session/map", "", nil).Body.Bytes(), &fc))
	assert.Empty(t, fc.Features)

	c.do(http.MethodPost, "/api/session/submit", "", nil)
	require.NoError(t, json.Unmarshal(c.do(http.MethodGet, "/api/session/map", "", nil).Body.Bytes(), &fc))
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "LineString", fc.Features[2].Geometry.Type)
}

func TestServer_ListAndNearby(t *testing.T) {
	c, _ := newClient(t, config.Default())

	var list struct {
		Technicians []models.Technician `json:"technicians"`
	}
	require.NoError(t, json.Unmarshal(c.do(http.MethodGet, "/api/technicians", "", nil).Body.Bytes(), &list))
	require.Len(t, list.Technicians, 4)
	assert.Equal(t, "Ravi", list.Technicians[0].Name)

	var nearby struct {
		Technicians []struct {
			Name       string  `json:"name"`
			DistanceKm float64 `json:"distance_km"`
		} `json:"technicians"`
	}
	rec := c.do(http.MethodGet, "/api/technicians/nearby?radius_km=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nearby))
	require.Len(t, nearby.Technicians, 2)
	assert.Equal(t, "Ravi", nearby.Technicians[0].Name)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/technicians/nearby?radius_km=-1", "", nil).Code)
}

func TestServer_Export(t *testing.T) {
	c, _ := newClient(t, config.Default())

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/session/export", "", nil).Code)

	c.json(http.MethodPost, "/api/session/submit", map[string]any{"station_name": "MG Road Fuels"})
	rec := c.do(http.MethodGet, "/api/session/export", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "assignment_")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("Assignments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MG Road Fuels", rows[1][1])
	assert.Equal(t, "Ravi", rows[1][5])
}

func TestServer_DownloadTemplate(t *testing.T) {
	c, _ := newClient(t, config.Default())

	rec := c.do(http.MethodGet, "/download-template", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("Technicians")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestServer_SubmitRateLimited(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = config.RateLimitConfig{Requests: 0.001, Burst: 1}
	c, _ := newClient(t, cfg)

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/submit", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/session/submit", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/session", "", nil).Code)

	// another session has its own allowance
	other := &client{t: t, handler: c.handler}
	assert.Equal(t, http.StatusOK, other.do(http.MethodPost, "/api/session/submit", "", nil).Code)
}
