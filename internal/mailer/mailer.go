package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html><body>
<h2>Welcome to the store, {{.Name}}!</h2>
<p>Your account is ready. Happy shopping.</p>
</body></html>`))

// Client sends transactional mail through an HTTP API (Brevo-shaped:
// JSON payload, api-key header).
type Client struct {
	apiURL     string
	apiKey     string
	sender     string
	httpClient *http.Client
}

func New(apiURL, apiKey, sender string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		sender: sender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendWelcome renders and sends the welcome message. A nil client is a
// no-op so tests and mail-less deployments need no stub.
func (c *Client) SendWelcome(ctx context.Context, toEmail, name string) error {
	if c == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return err
	}

	payload := map[string]any{
		"sender":      map[string]string{"email": c.sender},
		"to":          []map[string]string{{"email": toEmail}},
		"subject":     "Welcome to the store",
		"htmlContent": buf.String(),
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail send failed: status %d", resp.StatusCode)
	}
	return nil
}
