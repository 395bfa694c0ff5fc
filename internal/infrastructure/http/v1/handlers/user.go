package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/core/id"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/http/v1/dto"
	"orderdesk/internal/infrastructure/resolver"
)

// UserService is the user use-case surface the handler drives.
type UserService interface {
	Register(ctx context.Context, userID user.ID, name string) (user.User, error)
	Rename(ctx context.Context, userID user.ID, name string) (user.User, error)
	Remove(ctx context.Context, userID user.ID) error
	List(ctx context.Context) ([]user.User, error)
}

// UserHandler handles /users. Users are read through the request's loaders,
// and the orders of every returned user come from one query.
type UserHandler struct {
	*BaseHandler
	service UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create registers a user.
// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u, err := h.service.Register(c.Request.Context(), id.From[user.User](req.ID), req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, u.ID.String())
}

// Get returns one user with their orders.
// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := resolver.UserByID(ctx, id.From[user.User](c.Param("id")))
	if err != nil {
		h.Error(c, err)
		return
	}

	view, err := resolver.ResolveUser(ctx, u)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUserView(view))
}

// List returns every user with their orders.
// GET /users
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.service.List(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	views, err := resolver.ResolveUsers(ctx, users)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserWithOrdersResponse, len(views))
	for i, v := range views {
		items[i] = dto.FromUserView(v)
	}
	h.OK(c, dto.NewListResponse(items))
}

// Update renames a user.
// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u, err := h.service.Rename(c.Request.Context(), id.From[user.User](c.Param("id")), req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(u))
}

// Delete removes a user. A user who still owns orders is rejected.
// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := id.From[user.User](c.Param("id"))

	if err := h.service.Remove(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}
	resolver.ForgetUser(ctx, userID)

	h.NoContent(c)
}
