package alerting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
	"github.com/tourneyops/scheduler-api/internal/platform/resilience"
)

func digestIssues() []schedule.Issue {
	return []schedule.Issue{
		{
			Type:        schedule.IssueInvalidDate,
			Severity:    schedule.SeverityCritical,
			Date:        "2026-09-05",
			MatchIDs:    []string{"mt-1"},
			Description: "match mt-1 has an invalid time range",
		},
		{
			Type:        schedule.IssueTeamConflict,
			Severity:    schedule.SeverityHigh,
			Date:        "2026-09-05",
			MatchIDs:    []string{"mt-2", "mt-3"},
			Description: "team t1 is double booked",
		},
	}
}

func TestWebhookPublisher_PublishesDigest(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		URL:     server.URL,
		Token:   "secret",
		Timeout: 2 * time.Second,
	}, logging.NewNop())

	if err := publisher.PublishIssueDigest(context.Background(), digestIssues()); err != nil {
		t.Fatalf("publish digest: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}

	var digest map[string]any
	if err := sonic.Unmarshal(gotBody, &digest); err != nil {
		t.Fatalf("unmarshal digest body: %v", err)
	}
	if got, _ := digest["total_issues"].(float64); got != 2 {
		t.Fatalf("expected total_issues=2, got %v", digest["total_issues"])
	}
	bySeverity, _ := digest["by_severity"].(map[string]any)
	if got, _ := bySeverity["critical"].(float64); got != 1 {
		t.Fatalf("expected 1 critical issue, got %v", bySeverity["critical"])
	}
	issues, _ := digest["issues"].([]any)
	if len(issues) != 2 {
		t.Fatalf("expected 2 digest issues, got %d", len(issues))
	}
}

func TestWebhookPublisher_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		URL:     server.URL,
		Retries: 2,
		Timeout: 2 * time.Second,
	}, logging.NewNop())

	if err := publisher.PublishIssueDigest(context.Background(), digestIssues()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 webhook calls, got %d", got)
	}
}

func TestWebhookPublisher_DoesNotRetryPermanentFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		URL:     server.URL,
		Retries: 3,
		Timeout: 2 * time.Second,
	}, logging.NewNop())

	err := publisher.PublishIssueDigest(context.Background(), digestIssues())
	if err == nil {
		t.Fatalf("expected error for status 400")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single webhook call, got %d", got)
	}
}

func TestWebhookPublisher_CircuitBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		URL:     server.URL,
		Timeout: 2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	if err := publisher.PublishIssueDigest(context.Background(), digestIssues()); err == nil {
		t.Fatalf("expected first publish to fail")
	}
	callsAfterFirst := calls.Load()

	err := publisher.PublishIssueDigest(context.Background(), digestIssues())
	if err == nil {
		t.Fatalf("expected circuit breaker rejection")
	}
	if !strings.Contains(err.Error(), "temporarily unavailable") {
		t.Fatalf("expected circuit breaker error, got %v", err)
	}
	if calls.Load() != callsAfterFirst {
		t.Fatalf("expected no webhook call while circuit is open")
	}
}

func TestWebhookPublisher_EmptyDigestIsNoop(t *testing.T) {
	publisher := NewWebhookPublisher(WebhookPublisherConfig{URL: "http://unreachable.invalid"}, logging.NewNop())
	if err := publisher.PublishIssueDigest(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for empty digest, got %v", err)
	}
}

func TestWebhookPublisher_InvalidURL(t *testing.T) {
	publisher := NewWebhookPublisher(WebhookPublisherConfig{URL: "ftp://example.com/hook"}, logging.NewNop())
	if err := publisher.PublishIssueDigest(context.Background(), digestIssues()); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
