package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	fromAddr   string // e.g. "alertas@colegio.edu"
	fromName   string // e.g. "SCAS Screening"
	baseURL    string // admin dashboard base, e.g. "https://scas.colegio.edu"
	endpoint   string
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName, baseURL string) Sender {
	return newResendClient(apiKey, fromAddr, fromName, baseURL, resendEndpoint)
}

func newResendClient(apiKey, fromAddr, fromName, baseURL, endpoint string) *resendClient {
	return &resendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// SendHighLevelAlert notifies the counsellor inbox about a high result.
func (c *resendClient) SendHighLevelAlert(ctx context.Context, p HighLevelAlertParams) error {
	subject := "SCAS: high anxiety result"
	if p.StudentName != "" {
		subject = fmt.Sprintf("SCAS: high anxiety result for %s", p.StudentName)
	}

	detailURL := ""
	if c.baseURL != "" {
		detailURL = fmt.Sprintf("%s/api/admin/submissions/%s", c.baseURL, p.SubmissionID)
	}

	return c.send(ctx, p.To, subject, highLevelAlertHTML(p, detailURL))
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr)

	bodyBytes, err := json.Marshal(resendRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return nil
}

// ─── HTML TEMPLATES ───────────────────────────────────────────────────────────

func highLevelAlertHTML(p HighLevelAlertParams, detailURL string) string {
	name := html.EscapeString(p.StudentName)
	if name == "" {
		name = "A student"
	}

	link := ""
	if detailURL != "" {
		link = fmt.Sprintf(`<p style="margin: 24px 0;"><a href="%s" style="color: #0f172a;">Open the submission detail</a></p>`,
			html.EscapeString(detailURL))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">High SCAS result</h2>
  <p><strong>%s</strong> (%s) scored <strong>%d / %d</strong> on %s.</p>
  <p>Classifier verdict: <strong>%s</strong> (%s).</p>
  %s
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0;">
  <p style="color: #9ca3af; font-size: 12px;">
    Screening result only. It is not a diagnosis.
  </p>
</body>
</html>`,
		name,
		html.EscapeString(p.StudentEmail),
		p.Total, p.MaxTotal,
		p.SubmittedAt.UTC().Format("2006-01-02 15:04 MST"),
		html.EscapeString(p.ModelLabel),
		html.EscapeString(p.ModelSource),
		link,
	)
}
