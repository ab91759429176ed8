package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/response"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
)

const msgUserNotFound = "User not found"

type createUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// userResponse is the public projection of a user; the password hash never
// leaves the service.
type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

type UserHandler struct {
	userSvc service.UserServiceInterface
}

func NewUserHandler(userSvc service.UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list users failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "Error getting users")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, r, http.StatusNotFound, msgUserNotFound)
		return
	}
	u, err := h.userSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, msgUserNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "get user failed", "error", err, "user_id", id)
		response.Error(w, r, http.StatusInternalServerError, "Error getting user")
		return
	}
	response.JSON(w, r, http.StatusOK, toUserResponse(*u))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	created, err := h.userSvc.Create(r.Context(), service.CreateUserInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingRequiredFields) {
			response.Error(w, r, http.StatusBadRequest, msgMissingRequiredFields)
			return
		}
		slog.ErrorContext(r.Context(), "create user failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "Error inserting user")
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:  "user.create",
		TargetType: "user",
		TargetID:   formatID(created.ID),
		Action:     "create",
		Outcome:    "success",
		Reason:     "user_created",
	})
	response.JSON(w, r, http.StatusCreated, struct {
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}{Message: "User created successfully", User: toUserResponse(*created)})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, r, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err := h.userSvc.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, msgUserNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "delete user failed", "error", err, "user_id", id)
		response.Error(w, r, http.StatusInternalServerError, "Error deleting user")
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:  "user.delete",
		TargetType: "user",
		TargetID:   formatID(id),
		Action:     "delete",
		Outcome:    "success",
		Reason:     "user_deleted",
	})
	response.Text(w, r, http.StatusOK, "User deleted successfully")
}
