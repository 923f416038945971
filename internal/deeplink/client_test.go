package deeplink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", srv.Client(), slog.Default())
}

func writeLink(t *testing.T, w http.ResponseWriter, link DeepLink) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(link); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestGenerateLink_Success(t *testing.T) {
	granted := DeepLink{
		ID:             7,
		Link:           "https://links.example.com/abc",
		DateCreated:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/generateDeeplink" {
			t.Errorf("path = %s, want /generateDeeplink", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}

		var req struct {
			ReferralCode string `json:"referral_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ReferralCode != "ABC123" {
			t.Errorf("referral_code = %q, want ABC123", req.ReferralCode)
		}

		writeLink(t, w, granted)
	})

	got, err := client.GenerateLink(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != granted.ID || got.Link != granted.Link {
		t.Errorf("got %+v, want %+v", got, granted)
	}
	if !got.ExpirationDate.Equal(granted.ExpirationDate) {
		t.Errorf("expiration = %v, want %v", got.ExpirationDate, granted.ExpirationDate)
	}
}

func TestGenerateLink_BlankCode_NoRequest(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request may reach the provider for a blank code")
	})

	_, err := client.GenerateLink(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerateLink_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"maintenance"}`)
	})

	_, err := client.GenerateLink(context.Background(), "ABC123")

	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("err = %v, want *domain.ExternalServiceError", err)
	}
	if extErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", extErr.StatusCode)
	}
	if !strings.Contains(extErr.Body, "maintenance") {
		t.Errorf("body %q should carry the upstream payload", extErr.Body)
	}
}

func TestGenerateLink_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, "", srv.Client(), slog.Default())
	srv.Close()

	_, err := client.GenerateLink(context.Background(), "ABC123")

	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("err = %v, want *domain.ExternalServiceError", err)
	}
	if extErr.Err == nil {
		t.Error("transport errors must carry the underlying error")
	}
}

func TestGenerateLink_EmptySuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.GenerateLink(context.Background(), "ABC123")

	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("err = %v, want *domain.ExternalServiceError", err)
	}
}

func TestExtendLinkLifetime_SendsLinkID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/updateDeeplinkTimeToLive" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req struct {
			ID int `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ID != 42 {
			t.Errorf("id = %d, want 42", req.ID)
		}

		writeLink(t, w, DeepLink{
			ID:             42,
			Link:           "https://links.example.com/abc",
			ExpirationDate: time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		})
	})

	got, err := client.ExtendLinkLifetime(context.Background(), &DeepLink{ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 42 {
		t.Errorf("id = %d, want 42", got.ID)
	}
}

func TestExtendLinkLifetime_InvalidID_NoRequest(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request may reach the provider for an invalid link")
	})

	cases := []struct {
		name string
		link *DeepLink
	}{
		{"nil link", nil},
		{"zero id", &DeepLink{ID: 0}},
		{"negative id", &DeepLink{ID: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.ExtendLinkLifetime(context.Background(), tc.link)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestDeleteLink_IDInPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/deleteDeeplink/42" {
			t.Errorf("path = %s, want /deleteDeeplink/42", r.URL.Path)
		}
		writeLink(t, w, DeepLink{ID: 42, Link: "https://links.example.com/abc"})
	})

	got, err := client.DeleteLink(context.Background(), &DeepLink{ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 42 {
		t.Errorf("id = %d, want 42", got.ID)
	}
}
