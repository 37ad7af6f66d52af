package dto

import (
	"time"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// NewUserResponse maps a user row to its public view.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
