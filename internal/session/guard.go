// Package session reacts to the server rejecting the stored credential.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"taskman/internal/credential"
)

// Guard clears the credential and sends the user to the login entry point
// when the API reports Unauthorized. There is no retry and no token refresh.
type Guard struct {
	creds    credential.Store
	navigate func()
	logger   zerolog.Logger

	mu         sync.Mutex
	navigating bool
}

// NewGuard returns a guard that clears creds and then calls navigate.
func NewGuard(creds credential.Store, navigate func(), logger zerolog.Logger) *Guard {
	return &Guard{
		creds:    creds,
		navigate: navigate,
		logger:   logger,
	}
}

// OnUnauthorized clears the credential and navigates to login.
// Calls made while a navigation is already in progress have no effect.
func (g *Guard) OnUnauthorized() {
	g.mu.Lock()
	if g.navigating {
		g.mu.Unlock()
		return
	}
	g.navigating = true
	g.mu.Unlock()

	g.logger.Warn().Msg("session expired, credential cleared")
	if err := g.creds.Clear(); err != nil {
		g.logger.Error().Err(err).Msg("failed to clear credential")
	}
	if g.navigate != nil {
		g.navigate()
	}
}

// Navigating reports whether the guard has redirected and not been reset.
func (g *Guard) Navigating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.navigating
}

// Reset re-arms the guard after the user has logged in again.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.navigating = false
}
