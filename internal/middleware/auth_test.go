package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockVerifier はTokenVerifierのモック。
type mockVerifier struct {
	verifyFn func(tokenString string) (string, error)
}

func (m *mockVerifier) Verify(tokenString string) (string, error) {
	return m.verifyFn(tokenString)
}

// TestAuthMiddleware_ValidToken_InjectsUserID は有効なトークンで
// ユーザーIDがコンテキストに注入されることを検証する。
func TestAuthMiddleware_ValidToken_InjectsUserID(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(tokenString string) (string, error) {
			if tokenString != "valid-token" {
				t.Errorf("token = %q, want %q", tokenString, "valid-token")
			}
			return "user-1", nil
		},
	}

	mw := NewAuthMiddleware(verifier)

	var gotUserID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Fatalf("UserIDFromContext returned error: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotUserID != "user-1" {
		t.Errorf("user ID = %q, want %q", gotUserID, "user-1")
	}
}

// TestAuthMiddleware_MissingHeader_Returns401 はAuthorizationヘッダーなしの
// リクエストが401になることを検証する。
func TestAuthMiddleware_MissingHeader_Returns401(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(tokenString string) (string, error) {
			t.Fatal("Verify should not be called without Authorization header")
			return "", nil
		},
	}

	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want %q", body.Code, "UNAUTHORIZED")
	}
	if body.Category != "auth" {
		t.Errorf("category = %q, want %q", body.Category, "auth")
	}
}

// TestAuthMiddleware_InvalidToken_Returns401 は検証に失敗するトークンが
// 401になることを検証する。
func TestAuthMiddleware_InvalidToken_Returns401(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(tokenString string) (string, error) {
			return "", errors.New("token expired")
		},
	}

	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_NonBearerScheme_Returns401 はBearer以外のスキームが
// 401になることを検証する。
func TestAuthMiddleware_NonBearerScheme_Returns401(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(tokenString string) (string, error) {
			t.Fatal("Verify should not be called for non-Bearer scheme")
			return "", nil
		},
	}

	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestUserIDFromContext_NotSet_ReturnsError はユーザーID未設定の
// コンテキストでエラーが返ることを検証する。
func TestUserIDFromContext_NotSet_ReturnsError(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	if err == nil {
		t.Fatal("expected error for context without user ID, got nil")
	}
}

// TestContextWithUserID_RoundTrip は注入したユーザーIDが取り出せることを検証する。
func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-42")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user ID = %q, want %q", userID, "user-42")
	}
}
