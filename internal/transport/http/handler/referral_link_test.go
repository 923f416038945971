package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carton-caps/referrals/internal/domain"
	"github.com/carton-caps/referrals/internal/transport/http/handler"
	"github.com/carton-caps/referrals/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLinkUsecase struct {
	createOrGet func(ctx context.Context, userID string) (*usecase.ReferralLink, error)
	get         func(ctx context.Context, userID string) (*usecase.ReferralLink, error)
	extendTTL   func(ctx context.Context, userID string) (*usecase.ReferralLink, error)
}

func (f *fakeLinkUsecase) CreateOrGetReferralLink(ctx context.Context, userID string) (*usecase.ReferralLink, error) {
	return f.createOrGet(ctx, userID)
}

func (f *fakeLinkUsecase) GetReferralLink(ctx context.Context, userID string) (*usecase.ReferralLink, error) {
	return f.get(ctx, userID)
}

func (f *fakeLinkUsecase) ExtendReferralLinkTimeToLive(ctx context.Context, userID string) (*usecase.ReferralLink, error) {
	return f.extendTTL(ctx, userID)
}

// linkRouter wires the handler the way the real router does, with the
// authenticated user id injected directly.
func linkRouter(uc *fakeLinkUsecase, userID string) *gin.Engine {
	h := handler.NewReferralLinkHandler(uc, testLogger())
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", userID) })
	r.POST("/referral-link", h.Create)
	r.GET("/referral-link", h.Get)
	r.PUT("/referral-link/ttl", h.ExtendTTL)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestReferralLink_Create_ReturnsLink(t *testing.T) {
	expires := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	uc := &fakeLinkUsecase{
		createOrGet: func(_ context.Context, userID string) (*usecase.ReferralLink, error) {
			if userID != "u1" {
				t.Errorf("userID = %q, want u1", userID)
			}
			return &usecase.ReferralLink{Link: "https://links.example.com/abc", ExpirationDate: expires}, nil
		},
	}

	w := doRequest(t, linkRouter(uc, "u1"), http.MethodPost, "/referral-link")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		ReferralLink   string    `json:"referral_link"`
		ExpirationDate time.Time `json:"expiration_date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ReferralLink != "https://links.example.com/abc" {
		t.Errorf("referral_link = %q", body.ReferralLink)
	}
	if !body.ExpirationDate.Equal(expires) {
		t.Errorf("expiration_date = %v, want %v", body.ExpirationDate, expires)
	}
}

func TestReferralLink_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid argument", fmt.Errorf("user id is empty: %w", domain.ErrInvalidArgument), http.StatusBadRequest},
		{"user not found", fmt.Errorf("user u1: %w", domain.ErrUserNotFound), http.StatusNotFound},
		{"link not found", fmt.Errorf("user u1: %w", domain.ErrReferralLinkNotFound), http.StatusNotFound},
		{"duplicate link", domain.ErrDuplicateReferralLink, http.StatusConflict},
		{"provider failure", &domain.ExternalServiceError{Op: "POST generateDeeplink", StatusCode: 503}, http.StatusBadGateway},
		{"persistence", domain.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeLinkUsecase{
				createOrGet: func(context.Context, string) (*usecase.ReferralLink, error) {
					return nil, tc.err
				},
			}

			w := doRequest(t, linkRouter(uc, "u1"), http.MethodPost, "/referral-link")
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestReferralLink_ProviderFailure_BodyIsOpaque(t *testing.T) {
	uc := &fakeLinkUsecase{
		createOrGet: func(context.Context, string) (*usecase.ReferralLink, error) {
			return nil, &domain.ExternalServiceError{
				Op:         "POST generateDeeplink",
				StatusCode: 500,
				Body:       `{"internal":"stack trace"}`,
			}
		},
	}

	w := doRequest(t, linkRouter(uc, "u1"), http.MethodPost, "/referral-link")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "Deep link service unavailable" {
		t.Errorf("error = %q, upstream details must not leak", body.Error)
	}
}

func TestReferralLink_Get_NotFound(t *testing.T) {
	uc := &fakeLinkUsecase{
		get: func(context.Context, string) (*usecase.ReferralLink, error) {
			return nil, fmt.Errorf("user u1: %w", domain.ErrReferralLinkNotFound)
		},
	}

	w := doRequest(t, linkRouter(uc, "u1"), http.MethodGet, "/referral-link")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReferralLink_ExtendTTL_ReturnsNewExpiration(t *testing.T) {
	expires := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)
	uc := &fakeLinkUsecase{
		extendTTL: func(context.Context, string) (*usecase.ReferralLink, error) {
			return &usecase.ReferralLink{Link: "https://links.example.com/abc", ExpirationDate: expires}, nil
		},
	}

	w := doRequest(t, linkRouter(uc, "u1"), http.MethodPut, "/referral-link/ttl")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		ExpirationDate time.Time `json:"expiration_date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.ExpirationDate.Equal(expires) {
		t.Errorf("expiration_date = %v, want %v", body.ExpirationDate, expires)
	}
}
