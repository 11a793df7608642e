package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		hash   string
		header string
		want   int
	}{
		{name: "valid token", hash: string(hash), header: "Bearer letmein", want: http.StatusNoContent},
		{name: "lowercase scheme", hash: string(hash), header: "bearer letmein", want: http.StatusNoContent},
		{name: "wrong token", hash: string(hash), header: "Bearer nope", want: http.StatusForbidden},
		{name: "missing header", hash: string(hash), want: http.StatusUnauthorized},
		{name: "basic scheme", hash: string(hash), header: "Basic bGV0bWVpbg==", want: http.StatusUnauthorized},
		{name: "no hash configured", header: "Bearer letmein", want: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.header != "" {
				req.Header.Set("Authorization", test.header)
			}
			rec := httptest.NewRecorder()
			RequireAdmin(test.hash)(ok).ServeHTTP(rec, req)
			if rec.Code != test.want {
				t.Fatalf("expected %d, got %d", test.want, rec.Code)
			}
		})
	}
}

func TestWithRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	ChainMiddleware(panicking, WithRecovery, WithRequestID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestWithRequestIDStoresID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" || seen != rec.Header().Get("X-Request-ID") {
		t.Fatalf("expected context id to match header, got %q and %q", seen, rec.Header().Get("X-Request-ID"))
	}
}
