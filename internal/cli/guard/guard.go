// Package guard decides whether a view may render for the current session
// state, redirecting through the router otherwise.
//
// Guards are pure consumers of session snapshots: a redirect is fire-and-
// forget, and a router that rejects the navigation does not change the
// decision - correctness is defined by state, not by the navigation call
// succeeding.
package guard

import (
	"github.com/rs/zerolog"

	"github.com/genlink-dev/genlink/internal/cli/auth"
)

// Decision is the outcome of evaluating a guard against a session snapshot
type Decision int

const (
	// DecisionPending means the session is still loading; render a placeholder
	DecisionPending Decision = iota
	// DecisionAllow means the protected content may render
	DecisionAllow
	// DecisionRedirected means a redirect was issued; render nothing
	DecisionRedirected
)

// Router is the navigation surface guards redirect through
type Router interface {
	Replace(path string) error
	Current() string
}

// AuthGuard enforces "must be authenticated" for a view
type AuthGuard struct {
	router  Router
	log     zerolog.Logger
	target  string
	enabled bool

	redirected bool
}

// NewAuthGuard creates a guard redirecting unauthenticated visitors to target
func NewAuthGuard(router Router, log zerolog.Logger, target string) *AuthGuard {
	return &AuthGuard{
		router:  router,
		log:     log,
		target:  target,
		enabled: true,
	}
}

// NewAuthGuardForPath creates a guard that is disabled when the policy marks
// the path public, so login and registration can share a protected layout
func NewAuthGuardForPath(router Router, log zerolog.Logger, policy *Policy, target, path string) *AuthGuard {
	g := NewAuthGuard(router, log, target)
	g.enabled = !policy.IsPublic(path)
	return g
}

// SetEnabled toggles the guard without recreating it
func (g *AuthGuard) SetEnabled(enabled bool) {
	g.enabled = enabled
}

// Evaluate decides for the given snapshot. At most one redirect is issued per
// unauthenticated state; repeat evaluations of the same state return
// DecisionRedirected without navigating again.
func (g *AuthGuard) Evaluate(snap auth.Snapshot) Decision {
	if !g.enabled {
		return DecisionAllow
	}
	if snap.IsLoading {
		g.redirected = false
		return DecisionPending
	}
	if snap.IsAuthenticated {
		g.redirected = false
		return DecisionAllow
	}

	if !g.redirected {
		g.redirected = true
		g.redirect(g.target)
	}
	return DecisionRedirected
}

func (g *AuthGuard) redirect(target string) {
	if err := g.router.Replace(target); err != nil {
		g.log.Debug().Err(err).Str("target", target).Msg("Guard redirect rejected by router")
	}
}

// NoActiveReportGuard keeps volunteers with an open assignment away from the
// assignment browser: they are sent back to their dashboard instead
type NoActiveReportGuard struct {
	router        Router
	log           zerolog.Logger
	loginPath     string
	dashboardPath string

	redirected bool
	checking   bool
}

// NewNoActiveReportGuard creates the guard with its two redirect targets
func NewNoActiveReportGuard(router Router, log zerolog.Logger, loginPath, dashboardPath string) *NoActiveReportGuard {
	return &NoActiveReportGuard{
		router:        router,
		log:           log,
		loginPath:     loginPath,
		dashboardPath: dashboardPath,
		checking:      true,
	}
}

// IsChecking reports whether the guard has not yet allowed the view. It stays
// true through both "auth still loading" and "redirect in flight" so callers
// keep rendering a placeholder until the guard is fully satisfied.
func (g *NoActiveReportGuard) IsChecking() bool {
	return g.checking
}

// Evaluate decides for the given snapshot
func (g *NoActiveReportGuard) Evaluate(snap auth.Snapshot) Decision {
	if snap.IsLoading {
		g.checking = true
		g.redirected = false
		return DecisionPending
	}

	if !snap.IsAuthenticated {
		g.checking = true
		if !g.redirected {
			g.redirected = true
			g.redirect(g.loginPath)
		}
		return DecisionRedirected
	}

	if snap.User != nil && snap.User.ActiveReport != nil {
		g.checking = true
		if !g.redirected {
			g.redirected = true
			g.redirect(g.dashboardPath)
		}
		return DecisionRedirected
	}

	g.checking = false
	g.redirected = false
	return DecisionAllow
}

func (g *NoActiveReportGuard) redirect(target string) {
	if err := g.router.Replace(target); err != nil {
		g.log.Debug().Err(err).Str("target", target).Msg("Guard redirect rejected by router")
	}
}
