package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/enum"
)

// Actor is the authenticated user a request runs as
type Actor struct {
	ID   uuid.UUID
	Role enum.Role
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == enum.RoleAdmin
}
