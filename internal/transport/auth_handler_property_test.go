package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shophub/internal/repository/memory"
	"shophub/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func newTestAuthHandler() *AuthHandler {
	store := memory.NewStorage()
	userService := service.NewUserService(store, store, service.TokenConfig{Secret: "test-secret"})
	return NewAuthHandler(userService, zap.NewNop())
}

func postJSON(handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("registration with invalid data returns a 400 error envelope", prop.ForAll(
		func(invalidCase int) bool {
			handler := newTestAuthHandler()

			var reqBody RegisterRequest
			switch invalidCase % 5 {
			case 0:
				reqBody = RegisterRequest{Email: "", Password: "secret123", Name: "Ama"}
			case 1:
				reqBody = RegisterRequest{Email: "not-an-email", Password: "secret123", Name: "Ama"}
			case 2:
				reqBody = RegisterRequest{Email: "ama@shop.test", Password: "short", Name: "Ama"}
			case 3:
				reqBody = RegisterRequest{Email: "ama@shop.test", Password: "secret123"}
			case 4:
				reqBody = RegisterRequest{Email: "ama@shop.test", Password: "secret123", Name: "Ama", Role: "admin"}
			}

			w := postJSON(handler.Register, "/api/auth/register", reqBody)
			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: expected 400, got %d", w.Code)
				return false
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: could not decode error response: %v", err)
				return false
			}
			if _, exists := response["error"]; !exists {
				t.Logf("FAIL: response missing 'error' field")
				return false
			}
			return true
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessfulRegistrationReturnsSession(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("registration then login returns tokens for the same account", prop.ForAll(
		func(local string, password string, seller bool) bool {
			handler := newTestAuthHandler()
			email := fmt.Sprintf("%s@shop.test", local)
			role := "buyer"
			if seller {
				role = "seller"
			}

			w := postJSON(handler.Register, "/api/auth/register", map[string]string{
				"email":    email,
				"password": password,
				"name":     "Kofi",
				"role":     role,
			})
			if w.Code != http.StatusCreated {
				t.Logf("FAIL: expected 201, got %d: %s", w.Code, w.Body.String())
				return false
			}

			var registered AuthResponse
			if err := json.NewDecoder(w.Body).Decode(&registered); err != nil {
				return false
			}
			if registered.Token == "" || registered.RefreshToken == "" || registered.User == nil {
				t.Logf("FAIL: incomplete register response")
				return false
			}
			if string(registered.User.Role) != role || registered.User.Email != email {
				t.Logf("FAIL: profile mismatch: %+v", registered.User)
				return false
			}

			w = postJSON(handler.Login, "/api/auth/login", LoginRequest{Email: email, Password: password})
			if w.Code != http.StatusOK {
				t.Logf("FAIL: login returned %d", w.Code)
				return false
			}

			var loggedIn AuthResponse
			if err := json.NewDecoder(w.Body).Decode(&loggedIn); err != nil {
				return false
			}
			return loggedIn.User != nil && loggedIn.User.ID == registered.User.ID && loggedIn.Token != ""
		},
		gen.RegexMatch(`^[a-z][a-z0-9]{2,12}$`),
		gen.RegexMatch(`^[A-Za-z0-9]{6,20}$`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	handler := newTestAuthHandler()
	w := postJSON(handler.Register, "/api/auth/register", RegisterRequest{Email: "efua@shop.test", Password: "secret123", Name: "Efua"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d", w.Code)
	}

	w = postJSON(handler.Login, "/api/auth/login", LoginRequest{Email: "efua@shop.test", Password: "wrong-password"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = postJSON(handler.RefreshToken, "/api/auth/refresh", RefreshRequest{RefreshToken: "unknown"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown refresh token, got %d", w.Code)
	}
}
