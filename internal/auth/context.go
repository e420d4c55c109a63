package auth

import (
	"context"
)

// SystemUserID identifies callers authenticated by API key
const SystemUserID = "system"

// UserContext holds authenticated caller information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor returns the id and display name recorded in audit trails.
// Anonymous callers are attributed to "anonymous".
func Actor(ctx context.Context) (id, name string) {
	if u, ok := FromContext(ctx); ok {
		return u.UserID, u.DisplayName
	}
	return "anonymous", ""
}
