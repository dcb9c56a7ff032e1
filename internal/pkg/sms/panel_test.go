package sms

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
)

func signParams(t *testing.T, apiKey string, params map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k + "=" + params[k])
	}

	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPanelSend(t *testing.T) {
	t.Run("Delivered", func(t *testing.T) {

		// Arrange
		const apiKey = "k-secret"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var params map[string]string
			if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if params["to"] != "09121234567" {
				t.Errorf("to = %q", params["to"])
			}
			if !strings.Contains(params["text"], "12345") || !strings.Contains(params["text"], "acme") {
				t.Errorf("text = %q, want code and footer", params["text"])
			}
			if params["timestamp"] == "" {
				t.Errorf("missing timestamp")
			}
			if got, want := params["signature"], signParams(t, apiKey, params); got != want {
				t.Errorf("signature = %q, want %q", got, want)
			}
			json.NewEncoder(w).Encode(panelResponse{Status: "OK", MessageID: "msg-77"})
		}))
		defer srv.Close()

		p, err := NewPanel(PanelConfig{
			BaseURL:  srv.URL,
			Username: "acme-user",
			Password: "pw",
			APIKey:   apiKey,
			Footer:   "acme",
		})
		if err != nil {
			t.Fatalf("NewPanel: %v", err)
		}

		// Act
		id, err := p.Send(context.Background(), Message{To: "09121234567", Body: "code 12345"})

		// Assert
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if id != "msg-77" {
			t.Fatalf("delivery id = %q, want msg-77", id)
		}
	})

	t.Run("Rejected", func(t *testing.T) {

		// Arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(panelResponse{Status: "error", Error: "blocked number"})
		}))
		defer srv.Close()

		p, err := NewPanel(PanelConfig{BaseURL: srv.URL, Username: "u", APIKey: "k"})
		if err != nil {
			t.Fatalf("NewPanel: %v", err)
		}

		// Act
		_, err = p.Send(context.Background(), Message{To: "09121234567", Body: "hi"})

		// Assert
		if !errors.Is(err, ErrPanelRejected) {
			t.Fatalf("error = %v, want ErrPanelRejected", err)
		}
	})

	t.Run("MissingConfig", func(t *testing.T) {
		if _, err := NewPanel(PanelConfig{}); !errors.Is(err, ErrPanelBaseURLRequired) {
			t.Fatalf("error = %v, want ErrPanelBaseURLRequired", err)
		}
		if _, err := NewPanel(PanelConfig{BaseURL: "http://x"}); !errors.Is(err, ErrPanelCredentialsRequired) {
			t.Fatalf("error = %v, want ErrPanelCredentialsRequired", err)
		}
	})
}
