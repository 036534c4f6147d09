package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/reading"
)

type UserStore interface {
	GetUserByName(username string) (*data.User, error)
}

// Auth resolves who is reading. There is no login flow in a terminal; the
// configured username is looked up in the local user table.
type Auth struct {
	users    UserStore
	username string
}

func NewAuth(users UserStore, username string) *Auth {
	return &Auth{users: users, username: strings.TrimSpace(username)}
}

// Resolve returns the viewer for the configured user, or an anonymous state
// when none is configured.
func (a *Auth) Resolve(ctx context.Context) (reading.AuthState, error) {
	if err := ctx.Err(); err != nil {
		return reading.AuthState{}, err
	}
	if a.username == "" || a.users == nil {
		return reading.AuthState{}, nil
	}

	user, err := a.users.GetUserByName(a.username)
	if err != nil {
		return reading.AuthState{}, fmt.Errorf("resolve user %q: %w", a.username, err)
	}
	return reading.AuthState{Viewer: &reading.Viewer{
		UserID:     user.ID,
		Role:       user.Role,
		Subscribed: user.Subscribed,
	}}, nil
}

func (a *Auth) Username() string {
	return a.username
}
