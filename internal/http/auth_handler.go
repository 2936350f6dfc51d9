package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

type authHandler struct {
	*responder
	authSvc service.AuthService
}

func newAuthHandler(rp *responder, authSvc service.AuthService) *authHandler {
	return &authHandler{
		responder: rp,
		authSvc:   authSvc,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// Role is accepted but ignored: self-registration always yields a
	// customer account.
	Role string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authSvc.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, authResponse{
		Success: true,
		Message: "Registration successful",
		Token:   result.Token,
		User:    newUserResponse(result.User),
	})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authSvc.Login(r.Context(), service.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
		User:    newUserResponse(result.User),
	})
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.GetProfile(r.Context(), principal(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Success bool         `json:"success"`
		User    userResponse `json:"user"`
	}{Success: true, User: newUserResponse(user)})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is a client-side token drop. The
	// endpoint exists for audit logging.
	h.logger.InfoContext(r.Context(), "user logged out")

	h.writeJSON(w, r, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "Logged out successfully"})
}
