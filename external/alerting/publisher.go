package alerting

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
	"github.com/tourneyops/scheduler-api/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("alert webhook transient failure")

type WebhookPublisherConfig struct {
	URL            string
	Token          string
	Retries        int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher pushes issue digests to an external alerting webhook.
// Delivery is best effort: transient failures are retried and trip the
// circuit breaker, permanent failures are returned as-is.
type WebhookPublisher struct {
	client         *fasthttp.Client
	url            string
	token          string
	retries        int
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:            strings.TrimSpace(cfg.URL),
		token:          strings.TrimSpace(cfg.Token),
		retries:        retries,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type issueDigest struct {
	GeneratedAtUTC string         `json:"generated_at_utc"`
	TotalIssues    int            `json:"total_issues"`
	BySeverity     map[string]int `json:"by_severity"`
	Issues         []digestIssue  `json:"issues"`
}

type digestIssue struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Date        string   `json:"date,omitempty"`
	MatchIDs    []string `json:"match_ids"`
	TeamID      string   `json:"team_id,omitempty"`
	Description string   `json:"description"`
}

func (p *WebhookPublisher) PublishIssueDigest(ctx context.Context, issues []schedule.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "alert webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("alert webhook is temporarily unavailable: %w", err)
		}
	}

	webhookURL, err := validateWebhookURL(p.url)
	if err != nil {
		return crerr.Wrap(err, "invalid ALERT_WEBHOOK_URL")
	}

	body, err := buildDigestBody(issues)
	if err != nil {
		return err
	}
	defer bytebufferpool.Put(body)

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			p.recordCircuitResult(lastErr)
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = p.post(webhookURL, body.B)
		if lastErr == nil {
			p.logger.InfoContext(ctx, "issue digest published", "issues", len(issues), "attempt", attempt+1)
			p.recordCircuitResult(nil)
			return nil
		}
		if !stderrors.Is(lastErr, errWebhookTransient) {
			break
		}
		p.logger.WarnContext(ctx, "issue digest publish attempt failed", "attempt", attempt+1, "error", lastErr)
	}

	p.recordCircuitResult(lastErr)
	return lastErr
}

func (p *WebhookPublisher) post(webhookURL string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		return fmt.Errorf("%w: post issue digest url=%s: %v", errWebhookTransient, webhookURL, err)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}

	raw := strings.TrimSpace(string(truncateBody(resp.Body(), 4096)))
	if isRetryableStatus(status) {
		return fmt.Errorf("%w: post issue digest status=%d url=%s body=%s", errWebhookTransient, status, webhookURL, raw)
	}
	return fmt.Errorf("post issue digest status=%d url=%s body=%s", status, webhookURL, raw)
}

func buildDigestBody(issues []schedule.Issue) (*bytebufferpool.ByteBuffer, error) {
	digest := issueDigest{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		TotalIssues:    len(issues),
		BySeverity:     make(map[string]int, 4),
		Issues:         make([]digestIssue, 0, len(issues)),
	}
	for _, issue := range issues {
		digest.BySeverity[string(issue.Severity)]++
		digest.Issues = append(digest.Issues, digestIssue{
			Type:        string(issue.Type),
			Severity:    string(issue.Severity),
			Date:        issue.Date,
			MatchIDs:    issue.MatchIDs,
			TeamID:      issue.TeamID,
			Description: issue.Description,
		})
	}

	buf := bytebufferpool.Get()
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(digest); err != nil {
		bytebufferpool.Put(buf)
		return nil, crerr.Wrap(err, "marshal issue digest")
	}
	return buf, nil
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func truncateBody(raw []byte, max int) []byte {
	if max <= 0 || len(raw) <= max {
		return raw
	}
	return raw[:max]
}
