package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrPanelBaseURLRequired is returned when the panel URL is missing.
	ErrPanelBaseURLRequired = errors.New("sms panel base url is required")
	// ErrPanelCredentialsRequired is returned when Username/APIKey are missing.
	ErrPanelCredentialsRequired = errors.New("sms panel credentials are required")
	// ErrPanelRejected is returned when the panel answers with a non-OK status.
	ErrPanelRejected = errors.New("sms panel rejected the message")
)

const defaultPanelTimeout = 5 * time.Second

// Panel is an SMS implementation backed by the provider panel's HTTP API.
//
// Every request carries a unix timestamp and an HMAC-SHA256 signature over
// the sorted request parameters, keyed with the API key.
type Panel struct {
	baseURL  string
	username string
	password string
	apiKey   string
	footer   string
	client   *http.Client
}

// PanelConfig configures the Panel implementation.
type PanelConfig struct {
	// BaseURL is the panel endpoint, e.g. "https://panel.example.com/api/send".
	BaseURL string
	// Username is the panel account name.
	Username string
	// Password is the panel account password.
	Password string
	// APIKey signs outgoing requests.
	APIKey string
	// Footer is appended to every message body when non-empty.
	Footer string
	// Timeout bounds the whole HTTP exchange; defaults to 5s.
	Timeout time.Duration
}

// NewPanel constructs a Panel sender.
func NewPanel(cfg PanelConfig) (*Panel, error) {
	if cfg.BaseURL == "" {
		return nil, ErrPanelBaseURLRequired
	}
	if cfg.Username == "" || cfg.APIKey == "" {
		return nil, ErrPanelCredentialsRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPanelTimeout
	}

	return &Panel{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		apiKey:   cfg.APIKey,
		footer:   cfg.Footer,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type panelResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// Send delivers a message through the panel and returns its message id.
func (p *Panel) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body := msg.Body
	if p.footer != "" {
		body += "\n" + p.footer
	}

	params := map[string]string{
		"username":  p.username,
		"password":  p.password,
		"to":        msg.To,
		"text":      body,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	params["signature"] = p.sign(params)

	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("sms: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms: send request: %w", err)
	}
	defer resp.Body.Close()

	var out panelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sms: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !strings.EqualFold(out.Status, "ok") {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrPanelRejected, out.Error)
		}
		return "", fmt.Errorf("%w: http %d", ErrPanelRejected, resp.StatusCode)
	}

	return out.MessageID, nil
}

// Close implements io.Closer for interface compatibility.
func (p *Panel) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// sign computes HMAC-SHA256 over "k=v" pairs joined with "&" in key order.
// The signature parameter itself is never part of the signed string.
func (p *Panel) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(p.apiKey))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
