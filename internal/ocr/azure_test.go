package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/betonpro/tradelinkpro/pkg/apperror"
)

func newTestClient(endpoint string) *Client {
	c := NewClient(endpoint, "test-key")
	c.pollInterval = time.Millisecond
	c.maxPolls = 3
	return c
}

// mockAzure serves the analyze submission and its polling endpoint.
// pollBodies are served in order; the last one repeats.
func mockAzure(t *testing.T, submitStatus int, pollBodies ...string) *httptest.Server {
	t.Helper()
	polls := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
				t.Errorf("missing subscription key header, got %q", got)
			}
			w.Header().Set("Operation-Location", srv.URL+"/result")
			w.WriteHeader(submitStatus)
			return
		}
		body := pollBodies[len(pollBodies)-1]
		if polls < len(pollBodies) {
			body = pollBodies[polls]
		}
		polls++
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeUnconfigured(t *testing.T) {
	c := newTestClient("")
	_, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, apperror.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAnalyzeSubmissionRejected(t *testing.T) {
	srv := mockAzure(t, http.StatusBadRequest)
	c := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, apperror.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestAnalyzeMissingOperationLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, apperror.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestAnalyzeNeverTerminal(t *testing.T) {
	srv := mockAzure(t, http.StatusAccepted, `{"status":"running"}`)
	c := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, apperror.ErrAnalysisIncomplete) {
		t.Errorf("expected ErrAnalysisIncomplete, got %v", err)
	}
}

func TestAnalyzeFailedStatus(t *testing.T) {
	srv := mockAzure(t, http.StatusAccepted,
		`{"status":"running"}`,
		`{"status":"failed"}`,
	)
	c := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if !errors.Is(err, apperror.ErrAnalysisFailed) {
		t.Errorf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestAnalyzeExtractsNameAndMobilePhone(t *testing.T) {
	body := `{
		"status": "succeeded",
		"analyzeResult": {
			"documents": [{
				"fields": {
					"contactNames": {"valueArray": [{"valueObject": {
						"firstName": {"value": "Marie"},
						"lastName": {"value": "Dupont"}
					}}]},
					"mobilePhones": {"valueArray": [{"valueString": "+33 6 12 34 56 78"}]},
					"companyPhones": {"valueArray": [{"valueString": "+33 1 00 00 00 00"}]}
				}
			}]
		}
	}`
	srv := mockAzure(t, http.StatusAccepted, body)
	c := newTestClient(srv.URL)

	result, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Name != "Marie Dupont" {
		t.Errorf("expected name Marie Dupont, got %q", result.Name)
	}
	if result.Phone != "+33 6 12 34 56 78" {
		t.Errorf("expected mobile phone preferred, got %q", result.Phone)
	}
}

func TestAnalyzeFallsBackToCompanyPhone(t *testing.T) {
	body := `{
		"status": "succeeded",
		"analyzeResult": {
			"documents": [{
				"fields": {
					"companyPhones": {"valueArray": [{"valueString": "+33 1 00 00 00 00"}]}
				}
			}]
		}
	}`
	srv := mockAzure(t, http.StatusAccepted, body)
	c := newTestClient(srv.URL)

	result, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Phone != "+33 1 00 00 00 00" {
		t.Errorf("expected company phone fallback, got %q", result.Phone)
	}
}

func TestAnalyzeStructuralMismatchYieldsEmptyResult(t *testing.T) {
	srv := mockAzure(t, http.StatusAccepted, `{"status":"succeeded","analyzeResult":{"documents":[]}}`)
	c := newTestClient(srv.URL)

	result, err := c.Analyze(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Name != "" || result.Phone != "" {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestAnalyzeRetriesPastPollErrors(t *testing.T) {
	srv := mockAzure(t, http.StatusAccepted,
		`not json at all`,
		`{"status":"succeeded","analyzeResult":{"documents":[]}}`,
	)
	c := newTestClient(srv.URL)

	if _, err := c.Analyze(context.Background(), []byte("img"), "image/png"); err != nil {
		t.Errorf("poll errors should be retried, got %v", err)
	}
}

func TestAnalyzeHonoursContextCancellation(t *testing.T) {
	srv := mockAzure(t, http.StatusAccepted, `{"status":"running"}`)
	c := newTestClient(srv.URL)
	c.pollInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Analyze(ctx, []byte("img"), "image/png")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
