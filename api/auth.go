package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// Claims carried by access tokens. The registered ID is the jti used for
// revocation.
type Claims struct {
	Role   models.Role `json:"role"`
	UserID int64       `json:"uid"`
	jwt.RegisteredClaims
}

type AuthHandler struct {
	store         repository.Store
	tokens        repository.TokenRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(store repository.Store, tokens repository.TokenRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone"`
	Location string      `json:"location"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// Signup creates the user together with its professional or company
// account and returns a token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleProfessional
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	ctx := r.Context()

	existing, err := h.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	user := models.User{Email: req.Email, Name: req.Name, PasswordHash: string(hash), Role: req.Role}
	err = h.store.WithTx(ctx, func(tx repository.Store) error {
		id, err := tx.CreateUser(ctx, &user)
		if err != nil {
			return err
		}
		user.ID = id

		switch req.Role {
		case models.RoleCompany:
			_, err = tx.CreateCompany(ctx, &models.Company{
				UserID:       id,
				Name:         req.Name,
				ContactEmail: req.Email,
				ContactPhone: req.Phone,
				Location:     req.Location,
			})
		default:
			first, last, _ := strings.Cut(req.Name, " ")
			_, err = tx.CreateProfessional(ctx, &models.Professional{
				UserID:    id,
				FirstName: first,
				LastName:  strings.TrimSpace(last),
				Phone:     req.Phone,
				Status:    models.ProfessionalActive,
			})
		}
		return err
	})
	if err != nil {
		logger.Error("signup", slog.Any("err", err), slog.String("request_id", RequestID(ctx)))
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	h.respondWithToken(w, &user)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "Credentials not found")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Credentials not found")
		return
	}

	h.respondWithToken(w, user)
}

// Signout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	expiresAt := time.Now().Add(h.tokenDuration)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := h.tokens.RevokeToken(r.Context(), claims.ID, expiresAt.UTC().UnixMilli()); err != nil {
		logger.Error("revoke token", slog.Any("err", err), slog.String("request_id", RequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Error signing out")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *models.User) {
	tokenStr, err := h.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error signing token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: tokenStr})
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:   user.Role,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
