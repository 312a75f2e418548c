package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/clock"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/metrics"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/storage/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingNotifier struct {
	mu   sync.Mutex
	body string
}

func (n *capturingNotifier) Send(_ context.Context, _, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.body = body
	return nil
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func (n *capturingNotifier) otp(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	otp := otpPattern.FindString(n.body)
	require.NotEmpty(t, otp, "no otp in %q", n.body)
	return otp
}

func newTestServer(t *testing.T) (*httptest.Server, *capturingNotifier, *clock.Manual) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	pools := app.NewPoolService(store)
	require.NoError(t, pools.Bootstrap(ctx, []domain.RegionSeed{
		{Name: "North", Capacity: 2},
		{Name: "South", Capacity: 1},
	}))

	alloc := app.NewAllocationService(store, clk, app.WithMetrics(m))
	notifier := &capturingNotifier{}
	ledger := app.NewLedgerService(store, store)

	srv := httptest.NewServer(NewRouter(Services{
		Samples:     alloc,
		Pools:       pools,
		Processor:   app.NewManualService(store, clk, app.WithMetrics(m)),
		Ledger:      ledger,
		Dashboard:   ledger,
		Corrections: app.NewCorrectionService(store, alloc, notifier, "ops@example.com", clk, app.WithMetrics(m)),
	}, RouterConfig{
		CORSOrigins:    []string{"*"},
		ExportPassword: "pw",
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}))
	t.Cleanup(srv.Close)
	return srv, notifier, clk
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestRouter_AllocateProcessCorrect(t *testing.T) {
	srv, notifier, clk := newTestServer(t)

	var pools []poolResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/pools", "", &pools))
	require.Len(t, pools, 2)
	poolIDs := map[string]string{pools[0].Name: pools[0].ID, pools[1].Name: pools[1].ID}

	for _, code := range []string{"S1", "S2", "S3"} {
		var got allocateSampleResponse
		require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/samples", `{"code":"`+code+`"}`, &got))
		assert.Equal(t, code, got.Code)
	}

	var errResp errorResponse
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, srv.URL+"/samples", `{"code":"S4"}`, &errResp))
	assert.Equal(t, "no_capacity_available", errResp.Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, http.MethodPost, srv.URL+"/samples", `{"code":"S1"}`, &errResp))
	assert.Equal(t, "duplicate_code", errResp.Code)

	var processed processResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/pools/"+poolIDs["North"]+"/process", `{"count":2}`, &processed))
	assert.Equal(t, 0, processed.Pool.Allocated)

	// Request and verify a correction of S1 to S9.
	var handle correctionHandleResponse
	require.Equal(t, http.StatusAccepted, doJSON(t, http.MethodPost, srv.URL+"/corrections", `{"old_code":"S1","new_code":"S9"}`, &handle))
	assert.Equal(t, "ops@example.com", handle.ContactAddress)

	clk.Advance(5 * time.Minute)
	verifyBody, _ := json.Marshal(verifyCorrectionRequest{
		ContactAddress: handle.ContactAddress,
		OldCode:        handle.OldCode,
		NewCode:        handle.NewCode,
		OTP:            notifier.otp(t),
	})
	var verified verifyCorrectionResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, srv.URL+"/corrections/verify", string(verifyBody), &verified))
	assert.Equal(t, "S9", verified.NewCode)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, srv.URL+"/corrections/verify", string(verifyBody), &errResp))
	assert.Equal(t, "no_pending_request", errResp.Code)

	var entries []ledgerEntryResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/ledger?action=allocate", "", &entries))
	assert.Len(t, entries, 4)
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/ledger?action=delete", "", &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"S1"}, entries[0].SampleCodes)

	var dash dashboardResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, srv.URL+"/dashboard", "", &dash))
	assert.Len(t, dash.Recent, 6)
	assert.Equal(t, "delete", dash.Recent[1].Action)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	var sb strings.Builder
	_, err = io.Copy(&sb, res.Body)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), `samplefit_corrections_total{outcome="ok",stage="apply"} 1`)
}

func TestRouter_ExpiredCorrection(t *testing.T) {
	srv, notifier, clk := newTestServer(t)

	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, srv.URL+"/samples", `{"code":"X1"}`, nil))
	require.Equal(t, http.StatusAccepted, doJSON(t, http.MethodPost, srv.URL+"/corrections", `{"old_code":"X1","new_code":"X2"}`, nil))

	clk.Advance(10*time.Minute + time.Second)
	body := `{"contact_address":"ops@example.com","old_code":"X1","new_code":"X2","otp":"` + notifier.otp(t) + `"}`
	var errResp errorResponse
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodPost, srv.URL+"/corrections/verify", body, &errResp))
	assert.Equal(t, "otp_expired", errResp.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, srv.URL+"/blocks", "", &errResp))
	assert.Equal(t, codeNotFound, errResp.Code)
}

func TestRouter_RejectsNulInSampleCode(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/samples", `{"code":"S\u00001"}`, &errResp))
	assert.Equal(t, "invalid_code", errResp.Code)

	body := `{"old_code":"X1","new_code":"Y\u00001"}`
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, srv.URL+"/corrections", body, &errResp))
	assert.Equal(t, "invalid_code", errResp.Code)
}
