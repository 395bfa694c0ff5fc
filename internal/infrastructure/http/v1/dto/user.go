package dto

import (
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/resolver"
)

// CreateUserRequest for registering a user. ID is optional and generated when empty.
type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`
}

// UpdateUserRequest for renaming a user.
type UpdateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

// UserResponse is the public form of a user.
type UserResponse struct {
	BaseResponse
	Name string `json:"name"`
}

// FromUser creates UserResponse from user.User.
func FromUser(u user.User) UserResponse {
	return UserResponse{
		BaseResponse: fromBase(u.ID.String(), u.Timestamps),
		Name:         u.Name.String(),
	}
}

// UserWithOrdersResponse is a user with the orders they placed.
type UserWithOrdersResponse struct {
	UserResponse
	Orders []OrderSummaryResponse `json:"orders"`
}

// FromUserView creates UserWithOrdersResponse from a resolved user.
func FromUserView(v resolver.UserView) UserWithOrdersResponse {
	orders := make([]OrderSummaryResponse, len(v.Orders))
	for i, o := range v.Orders {
		orders[i] = FromOrder(o)
	}
	return UserWithOrdersResponse{UserResponse: FromUser(v.User), Orders: orders}
}
