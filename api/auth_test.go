package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/jobmatch/api"
	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository/mock"
)

const testSecret = "testsecret"

func parseClaims(t *testing.T, body []byte) *api.Claims {
	t.Helper()
	var ar struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &ar); err != nil {
		t.Fatalf("unmarshal token: %v", err)
	}
	if ar.Token == "" {
		t.Fatalf("empty token")
	}
	claims := &api.Claims{}
	if _, err := jwt.ParseWithClaims(ar.Token, claims, func(token *jwt.Token) (any, error) { return []byte(testSecret), nil }); err != nil {
		t.Fatalf("invalid token: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("token without jti")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		t.Fatalf("invalid exp claim")
	}
	return claims
}

func storedUser(t *testing.T, m *mock.Accounts, email, pw string, role models.Role) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	m.AddUser(models.User{Email: email, Name: "Stored", PasswordHash: string(hash), Role: role})
}

func TestAuthHandlers(t *testing.T) {
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(m *mock.Accounts)
		wantStatus int
		checkBody  func(t *testing.T, m *mock.Accounts, body []byte)
	}{
		{
			name:       "Signup_InvalidRequest",
			path:       "/signup",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Name",
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Email",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Password",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_InvalidRole",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret", "role": "admin"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_Professional",
			path:       "/signup",
			body:       map[string]string{"name": "Alice Smith", "email": "Alice@Example.com", "password": "s3cret"},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, m *mock.Accounts, b []byte) {
				claims := parseClaims(t, b)
				if claims.Role != models.RoleProfessional {
					t.Fatalf("role = %q, want professional", claims.Role)
				}
				if m.Users["alice@example.com"] == nil {
					t.Fatalf("email was not normalized")
				}
				if len(m.Professionals) != 1 || m.Professionals[0].FirstName != "Alice" || m.Professionals[0].LastName != "Smith" {
					t.Fatalf("unexpected professionals: %+v", m.Professionals)
				}
			},
		},
		{
			name:       "Signup_Company",
			path:       "/signup",
			body:       map[string]string{"name": "Acme", "email": "hr@acme.test", "password": "s3cret", "role": "company", "phone": "555"},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, m *mock.Accounts, b []byte) {
				claims := parseClaims(t, b)
				if claims.Role != models.RoleCompany {
					t.Fatalf("role = %q, want company", claims.Role)
				}
				if len(m.Companies) != 1 || m.Companies[0].ContactEmail != "hr@acme.test" || m.Companies[0].ContactPhone != "555" {
					t.Fatalf("unexpected companies: %+v", m.Companies)
				}
			},
		},
		{
			name: "Signup_DuplicateEmail",
			path: "/signup",
			body: map[string]string{"name": "Dup", "email": "dup@example.com", "password": "pw"},
			prepare: func(m *mock.Accounts) {
				storedUser(t, m, "dup@example.com", "pw", models.RoleProfessional)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Signup_StoreError",
			path: "/signup",
			body: map[string]string{"name": "Err", "email": "err@example.com", "password": "pw"},
			prepare: func(m *mock.Accounts) {
				m.CreateErr = errors.New("disk full")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Email",
			path:       "/signin",
			body:       map[string]string{"password": "nop"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Password",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingUser",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Signin_Success",
			path: "/signin",
			body: map[string]string{"email": "bob@example.com", "password": "hunter2"},
			prepare: func(m *mock.Accounts) {
				storedUser(t, m, "bob@example.com", "hunter2", models.RoleCompany)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, m *mock.Accounts, b []byte) {
				claims := parseClaims(t, b)
				if claims.Role != models.RoleCompany || claims.UserID != m.Users["bob@example.com"].ID {
					t.Fatalf("unexpected claims: %+v", claims)
				}
			},
		},
		{
			name: "Signin_WrongPassword",
			path: "/signin",
			body: map[string]string{"email": "c@example.com", "password": "wrongpw"},
			prepare: func(m *mock.Accounts) {
				storedUser(t, m, "c@example.com", "rightpw", models.RoleProfessional)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := mock.NewAccounts()
			if tt.prepare != nil {
				tt.prepare(accounts)
			}
			handler := api.NewAuthHandler(accounts, accounts, testSecret, tokenDur)

			b, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(b))
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signup":
				handler.Signup(w, req)
			case "/signin":
				handler.Signin(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, accounts, data)
			}
		})
	}
}

func TestSignoutRevokesToken(t *testing.T) {
	accounts := mock.NewAccounts()
	storedUser(t, accounts, "bob@example.com", "hunter2", models.RoleProfessional)
	handler := api.NewAuthHandler(accounts, accounts, testSecret, time.Hour)

	b, _ := json.Marshal(map[string]string{"email": "bob@example.com", "password": "hunter2"})
	w := httptest.NewRecorder()
	handler.Signin(w, httptest.NewRequest(http.MethodPost, "/signin", bytes.NewReader(b)))
	if w.Code != http.StatusOK {
		t.Fatalf("signin: %d %s", w.Code, w.Body.String())
	}
	var ar struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &ar)
	claims := parseClaims(t, w.Body.Bytes())

	signout := api.JWTAuthMiddlewareWithSecret(testSecret, accounts)(http.HandlerFunc(handler.Signout))
	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signout", nil)
		req.Header.Set("Authorization", "Bearer "+ar.Token)
		rec := httptest.NewRecorder()
		signout.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	if first.Code != http.StatusOK || !bytes.Contains(first.Body.Bytes(), []byte("signed out")) {
		t.Fatalf("signout: %d %s", first.Code, first.Body.String())
	}
	if exp, ok := accounts.Revoked[claims.ID]; !ok || exp != claims.ExpiresAt.UnixMilli() {
		t.Fatalf("jti not revoked until expiry: %v", accounts.Revoked)
	}

	second := do()
	if second.Code != http.StatusUnauthorized || !bytes.Contains(second.Body.Bytes(), []byte("Token revoked")) {
		t.Fatalf("reuse after signout: %d %s", second.Code, second.Body.String())
	}
}

func TestSignoutWithoutClaims(t *testing.T) {
	accounts := mock.NewAccounts()
	handler := api.NewAuthHandler(accounts, accounts, testSecret, time.Hour)

	w := httptest.NewRecorder()
	handler.Signout(w, httptest.NewRequest(http.MethodPost, "/signout", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
