package middleware_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jaekwang-park/task-api/internal/middleware"
)

const (
	testIssuer   = "https://cognito-idp.ap-northeast-1.amazonaws.com/pool-1"
	testClientID = "client-1"
	testKid      = "jwt-test-kid"
)

type stubResolver struct {
	resolveFn func(ctx context.Context, sub string) (string, error)
}

func (s *stubResolver) ResolveUserID(ctx context.Context, sub string) (string, error) {
	return s.resolveFn(ctx, sub)
}

func resolveTo(userID string) *stubResolver {
	return &stubResolver{resolveFn: func(ctx context.Context, sub string) (string, error) {
		return userID, nil
	}}
}

func signedToken(t *testing.T, privKey *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(privKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func jwksServer(t *testing.T, kid string, privKey *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(privKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privKey.E)).Bytes()),
			},
		},
	}
	data, _ := json.Marshal(jwks)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAuth(t *testing.T, cfg middleware.AuthConfig) *middleware.Auth {
	t.Helper()
	auth, err := middleware.NewAuth(cfg)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	return auth
}

func jwtAuth(t *testing.T, privKey *rsa.PrivateKey, resolver middleware.UserResolver) *middleware.Auth {
	t.Helper()
	srv := jwksServer(t, testKid, privKey)
	return newAuth(t, middleware.AuthConfig{
		JWKSClient:   middleware.NewJWKSClient(srv.URL),
		Issuer:       testIssuer,
		AppClientID:  testClientID,
		UserResolver: resolver,
	})
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":       "cognito-sub-123",
		"iss":       testIssuer,
		"aud":       testClientID,
		"exp":       time.Now().Add(time.Hour).Unix(),
		"token_use": "id",
	}
}

func assertUnauthenticated(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["success"] != false || body["message"] != "No autenticado" {
		t.Errorf("unexpected body: %v", body)
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestNewAuth_RequiresCollaboratorsOutsideDevMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  middleware.AuthConfig
	}{
		{"missing resolver", middleware.AuthConfig{JWKSClient: middleware.NewJWKSClient("http://unused")}},
		{"missing jwks client", middleware.AuthConfig{UserResolver: resolveTo("u")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := middleware.NewAuth(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAuth_DevMode(t *testing.T) {
	auth := newAuth(t, middleware.AuthConfig{DevMode: true})

	var capturedUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = middleware.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		userIDHdr  string
		wantStatus int
		wantUserID string
	}{
		{"with X-User-ID", "dev-user-1", http.StatusOK, "dev-user-1"},
		{"without X-User-ID", "", http.StatusUnauthorized, ""},
		{"blank X-User-ID", "   ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturedUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.userIDHdr != "" {
				req.Header.Set("X-User-ID", tt.userIDHdr)
			}
			w := httptest.NewRecorder()

			auth.Middleware(inner).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && capturedUserID != tt.wantUserID {
				t.Errorf("expected userID=%q, got %q", tt.wantUserID, capturedUserID)
			}
		})
	}
}

func TestAuth_SkipsPublicPaths(t *testing.T) {
	privKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	tests := []struct {
		name string
		auth *middleware.Auth
	}{
		{"dev mode", newAuth(t, middleware.AuthConfig{DevMode: true})},
		{"jwt mode", jwtAuth(t, privKey, resolveTo("u"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/health", "/register", "/login", "/login/"} {
				var called bool
				inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					called = true
					w.WriteHeader(http.StatusOK)
				})
				req := httptest.NewRequest(http.MethodPost, path, nil)
				w := httptest.NewRecorder()

				tt.auth.Middleware(inner).ServeHTTP(w, req)

				if w.Code != http.StatusOK {
					t.Errorf("%s: expected 200, got %d", path, w.Code)
				}
				if !called {
					t.Errorf("%s: inner handler was not called", path)
				}
			}
		})
	}
}

func TestAuth_ProtectsAccountRoutes(t *testing.T) {
	auth := newAuth(t, middleware.AuthConfig{DevMode: true})

	for _, path := range []string{"/logout", "/profile", "/tasks/abc/weather"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		auth.Middleware(okHandler).ServeHTTP(w, req)

		assertUnauthenticated(t, w)
	}
}

func TestAuth_JWT_Valid(t *testing.T) {
	privKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	var resolvedSub string
	resolver := &stubResolver{resolveFn: func(ctx context.Context, sub string) (string, error) {
		resolvedSub = sub
		return "user-uuid-1", nil
	}}
	auth := jwtAuth(t, privKey, resolver)

	var capturedUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = middleware.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, privKey, testKid, validClaims()))
	w := httptest.NewRecorder()

	auth.Middleware(inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	if resolvedSub != "cognito-sub-123" {
		t.Errorf("expected resolver to receive sub, got %q", resolvedSub)
	}
	if capturedUserID != "user-uuid-1" {
		t.Errorf("expected userID=user-uuid-1, got %q", capturedUserID)
	}
}

func TestAuth_JWT_Rejected(t *testing.T) {
	privKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	otherKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	with := func(key string, value any) jwt.MapClaims {
		c := validClaims()
		if value == nil {
			delete(c, key)
		} else {
			c[key] = value
		}
		return c
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "NotBearer token"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + signedToken(t, privKey, testKid, with("exp", time.Now().Add(-time.Hour).Unix()))},
		{"no expiry", "Bearer " + signedToken(t, privKey, testKid, with("exp", nil))},
		{"wrong issuer", "Bearer " + signedToken(t, privKey, testKid, with("iss", "https://wrong-issuer.example.com"))},
		{"wrong audience", "Bearer " + signedToken(t, privKey, testKid, with("aud", "other-client"))},
		{"no sub", "Bearer " + signedToken(t, privKey, testKid, with("sub", nil))},
		{"wrong signing key", "Bearer " + signedToken(t, otherKey, testKid, validClaims())},
	}

	auth := jwtAuth(t, privKey, resolveTo("user-uuid-1"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			auth.Middleware(okHandler).ServeHTTP(w, req)

			assertUnauthenticated(t, w)
		})
	}
}

func TestAuth_JWT_ResolverErrors(t *testing.T) {
	privKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown user", middleware.ErrUserNotFound, http.StatusUnauthorized},
		{"wrapped unknown user", errors.Join(errors.New("lookup"), middleware.ErrUserNotFound), http.StatusUnauthorized},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &stubResolver{resolveFn: func(ctx context.Context, sub string) (string, error) {
				return "", tt.err
			}}
			auth := jwtAuth(t, privKey, resolver)

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			req.Header.Set("Authorization", "Bearer "+signedToken(t, privKey, testKid, validClaims()))
			w := httptest.NewRecorder()

			auth.Middleware(okHandler).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Body.String() == "" {
				t.Error("expected a JSON body")
			}
		})
	}
}
