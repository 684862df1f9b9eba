package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

type AuthHandler struct {
	technicianRepo repository.TechnicianRepo
	adminPassword  string
	jwtSecret      string
	tokenDuration  time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(tr repository.TechnicianRepo, adminPassword, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{technicianRepo: tr, adminPassword: adminPassword, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionUser struct {
	ID    any    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  sessionUser `json:"user"`
}

// TechnicianLogin authenticates by name or email, case-insensitively.
// A technician whose credential was never set may log in once with their
// phone number as password; the password is upgraded to a bcrypt hash on
// that first success.
func (h *AuthHandler) TechnicianLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	tech, err := h.technicianRepo.GetTechnicianByIdentifier(ctx, req.Identifier)
	if err != nil || tech == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	valid := false
	if tech.PasswordHash == "" {
		fallback := strings.TrimSpace(tech.Phone)
		valid = fallback != "" && req.Password == fallback

		if valid {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				http.Error(w, "Error hashing password", http.StatusInternalServerError)
				return
			}
			if err := h.technicianRepo.SetTechnicianPassword(ctx, tech.ID, string(hash)); err != nil {
				http.Error(w, "Error upgrading credential", http.StatusInternalServerError)
				return
			}
		}
	} else {
		valid = bcrypt.CompareHashAndPassword([]byte(tech.PasswordHash), []byte(req.Password)) == nil
	}

	if !valid {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, tech, "technician")
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	if h.adminPassword == "" || req.Password != h.adminPassword {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.signToken(jwt.MapClaims{
		"name": "Admin",
		"role": "admin",
		"exp":  time.Now().Add(h.tokenDuration).Unix(),
	})
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{
		Token: tokenStr,
		User:  sessionUser{ID: "admin", Name: "Admin", Role: "admin"},
	}, http.StatusOK)
}

type bootstrapRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Bootstrap creates the first technician account without prior
// authentication. It only works while no technicians exist; afterwards
// accounts are created by an admin through the technicians endpoint.
func (h *AuthHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Technician name is required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 4 {
		http.Error(w, "Password must be at least 4 characters", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	count, err := h.technicianRepo.CountTechnicians(ctx)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "System is already bootstrapped", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	tech := &models.Technician{
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
	}
	id, err := h.technicianRepo.CreateTechnician(ctx, tech)
	if err != nil {
		http.Error(w, "Error creating technician", http.StatusInternalServerError)
		return
	}
	tech.ID = id

	h.respondWithToken(w, tech, "technician")
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, tech *models.Technician, role string) {
	tokenStr, err := h.signToken(jwt.MapClaims{
		"technician_id": tech.ID,
		"name":          tech.Name,
		"role":          role,
		"exp":           time.Now().Add(h.tokenDuration).Unix(),
	})
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{
		Token: tokenStr,
		User:  sessionUser{ID: tech.ID, Name: tech.Name, Email: tech.Email, Role: role},
	}, http.StatusOK)
}

func (h *AuthHandler) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
