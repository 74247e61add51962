package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mnavarro/notas-api/internal/service"
)

// AuthHandler serves registration and login — the only two routes that do
// not sit behind the auth gate.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginUser is the slice of the user exposed in the login response.
type loginUser struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type loginData struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// Body: {"nombre": "...", "email": "...", "password": "..."}
// 201 {ok, mensaje} — the client is expected to log in afterwards; no
// token is issued here.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Nombre, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Usuario registrado correctamente")
}

// HandleLogin verifies credentials and returns a bearer token.
//
// HTTP: POST /api/auth/login
// 200 {ok, data:{token, user:{id, nombre}}}
// 401 on any credential failure — deliberately one indistinguishable answer.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, loginData{
		Token: result.Token,
		User:  loginUser{ID: result.User.ID, Nombre: result.User.Nombre},
	})
}
