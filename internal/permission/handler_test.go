package permission

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonance-events/resonance-access/internal/catalog"
	_ "github.com/resonance-events/resonance-access/testing"
)

type recordingMetrics struct {
	outcomes []string
}

func (m *recordingMetrics) ObserveCheck(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func newTestRouter(f *fixture, metrics Metrics) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, f.service, metrics)
	r := chi.NewRouter()
	r.Route("/api/v1/permissions", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	return r
}

func postCheck(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/permissions/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCheckEndpointGranted(t *testing.T) {
	f := newFixture()
	f.assignMembership("basic", tierFree, "free", true)
	f.grantFeature(tierFree, catalog.Conditions{"usage_limit": float64(2)})
	metrics := &recordingMetrics{}
	router := newTestRouter(f, metrics)

	rr := postCheck(t, router, `{"userId":"user-basic","feature":"event_creation","action":"create"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"hasPermission":true`)
	assert.Contains(t, body, `"tier":"free"`)
	assert.Contains(t, body, `"usageRemaining":2`)
	assert.NotEmpty(t, rr.Header().Get("X-Evaluation-Id"))
	assert.Equal(t, []string{OutcomeGranted}, metrics.outcomes)
}

func TestCheckEndpointDeniedIsStillOK(t *testing.T) {
	f := newFixture()
	metrics := &recordingMetrics{}
	router := newTestRouter(f, metrics)

	rr := postCheck(t, router, `{"userId":"user-basic","feature":"event_creation","action":"create"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"hasPermission":false`)
	assert.Contains(t, body, ReasonNoTier)
	assert.NotContains(t, body, `"tier"`)
	assert.Equal(t, []string{OutcomeDenied}, metrics.outcomes)
}

func TestCheckEndpointMissingFields(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, &recordingMetrics{})

	for _, body := range []string{
		`{}`,
		`{"userId":"user-basic"}`,
		`{"userId":"user-basic","feature":"event_creation"}`,
	} {
		rr := postCheck(t, router, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestCheckEndpointMalformedJSON(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, &recordingMetrics{})

	rr := postCheck(t, router, `{"userId":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckEndpointUnknownFeature(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, &recordingMetrics{})

	rr := postCheck(t, router, `{"userId":"user-basic","feature":"nonexistent","action":"create"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "feature not found")
}

func TestCheckEndpointStorageFailure(t *testing.T) {
	f := newFixture()
	f.directory.err = errors.New("dial tcp: connection refused")
	metrics := &recordingMetrics{}
	router := newTestRouter(f, metrics)

	rr := postCheck(t, router, `{"userId":"user-basic","feature":"event_creation","action":"create"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dial tcp", "storage detail must not leak")
	assert.Equal(t, []string{OutcomeError}, metrics.outcomes)
}

func TestCheckEndpointOrganizationOverride(t *testing.T) {
	f := newFixture()
	f.assignments.org[fmt.Sprintf("%d:%d", otherOrgID, featEvents)] = storedAssignment{tierID: tierPro, tierName: "pro", active: true}
	f.grantFeature(tierPro, nil)
	router := newTestRouter(f, &recordingMetrics{})

	rr := postCheck(t, router, fmt.Sprintf(`{"userId":"user-basic","feature":"event_creation","action":"create","organizationId":%d}`, otherOrgID))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tier":"pro"`)
}
