package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/service"
)

type userHandler struct {
	*responder
	userSvc service.UserService
}

func newUserHandler(rp *responder, userSvc service.UserService) *userHandler {
	return &userHandler{
		responder: rp,
		userSvc:   userSvc,
	}
}

type createUserRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"required,enum"`
}

type updateUserRequest struct {
	Name     *string     `json:"name" validate:"omitempty,max=100"`
	Email    *string     `json:"email" validate:"omitempty,email"`
	Role     *model.Role `json:"role" validate:"omitempty,enum"`
	IsActive *bool       `json:"isActive"`
}

type userListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Users   []userResponse `json:"users"`
}

type userEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    userResponse `json:"user"`
}

type userStatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		Total    int64            `json:"total"`
		Active   int64            `json:"active"`
		Inactive int64            `json:"inactive"`
		ByRole   map[string]int64 `json:"byRole"`
	} `json:"stats"`
}

func (h *userHandler) List(w http.ResponseWriter, r *http.Request) {
	params := service.ListUsersParams{}

	if role := r.URL.Query().Get("role"); role != "" {
		rl := model.Role(role)
		params.Role = &rl
	}
	if isActive := r.URL.Query().Get("isActive"); isActive != "" {
		active := isActive == "true"
		params.IsActive = &active
	}

	users, err := h.userSvc.ListUsers(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, newUserResponse(user))
	}

	h.writeJSON(w, r, http.StatusOK, userListResponse{
		Success: true,
		Count:   len(items),
		Users:   items,
	})
}

func (h *userHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.userSvc.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, userEnvelope{
		Success: true,
		User:    newUserResponse(user),
	})
}

func (h *userHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.userSvc.CreateUser(r.Context(), service.CreateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, userEnvelope{
		Success: true,
		Message: "User created successfully",
		User:    newUserResponse(user),
	})
}

func (h *userHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.userSvc.UpdateUser(r.Context(), principal(r).UserID, id, service.UpdateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, userEnvelope{
		Success: true,
		Message: "User updated successfully",
		User:    newUserResponse(user),
	})
}

func (h *userHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.userSvc.ToggleUserStatus(r.Context(), principal(r).UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}

	h.writeJSON(w, r, http.StatusOK, userEnvelope{
		Success: true,
		Message: message,
		User:    newUserResponse(user),
	})
}

func (h *userHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.userSvc.DeleteUser(r.Context(), principal(r).UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "User deleted successfully"})
}

func (h *userHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userSvc.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := userStatsResponse{Success: true}
	res.Stats.Total = stats.Total
	res.Stats.Active = stats.Active
	res.Stats.Inactive = stats.Inactive
	res.Stats.ByRole = map[string]int64{
		string(model.RoleAdmin):    stats.Admins,
		string(model.RoleStaff):    stats.Staff,
		string(model.RoleCustomer): stats.Customers,
	}

	h.writeJSON(w, r, http.StatusOK, res)
}
