package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/core"
	"droughtwatch/internal/types"
)

// UserRepo is the data access contract for subscriber accounts. Satisfied by
// db.UserRepository.
type UserRepo interface {
	Create(ctx context.Context, user *types.User) error
	GetByID(ctx context.Context, id int64) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	Delete(ctx context.Context, id int64) error
}

// CreateUserRequest is the body for POST /v1/users.
type CreateUserRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,max=200"`
	Region       string `json:"region" validate:"required,max=100"`
	Organization string `json:"organization,omitempty" validate:"max=200"`
}

// UserHandler serves subscriber registration and lookup.
type UserHandler struct {
	repo      UserRepo
	validator *core.Validator
	logger    *slog.Logger
}

// NewUserHandler builds the handler.
func NewUserHandler(repo UserRepo, v *core.Validator, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{repo: repo, validator: v, logger: logger}
}

// RegisterRoutes mounts the user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.GetByEmail)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles POST /v1/users. A duplicate email comes back as a 409.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user := &types.User{
		Email:        req.Email,
		Name:         req.Name,
		Region:       req.Region,
		Organization: req.Organization,
	}

	if err := h.repo.Create(r.Context(), user); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered",
		"user_id", user.ID,
		"region", user.Region,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: user})
}

// Get handles GET /v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// GetByEmail handles GET /v1/users?email=.
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"email query parameter is required",
			nil,
		))
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), email)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// Delete handles DELETE /v1/users/{id}. Triggers and notification history go
// with the account via FK cascade.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationNotNumeric,
			"id must be a positive integer",
			err,
		)
	}
	return id, nil
}
