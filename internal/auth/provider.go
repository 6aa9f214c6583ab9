// Package auth establishes and caches lobste.rs sessions for synthetic users.
package auth

import (
	"context"
	"net/http"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// Provider obtains sessions for synthetic users and injects them into
// outbound requests.
type Provider interface {
	// Session returns the session for user, logging in on first use.
	Session(ctx context.Context, user workload.UserID) (Session, error)

	// InjectHeader sets the Cookie header of req to the session of user.
	InjectHeader(ctx context.Context, user workload.UserID, req *http.Request) error
}
