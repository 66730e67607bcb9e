// Package guard decides, before every route transition, whether the
// navigation proceeds or is redirected based on authentication state.
package guard

// Decision is the outcome of a guard check. Exactly one is produced per
// transition.
type Decision int

const (
	// Proceed lets the transition through unchanged.
	Proceed Decision = iota
	// RedirectToLogin sends an unauthenticated user to the login route.
	RedirectToLogin
	// RedirectToDefault sends an authenticated user away from the login
	// route to the default route.
	RedirectToDefault
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToDefault:
		return "redirect-to-default"
	default:
		return "unknown"
	}
}

// Decide applies the guard's decision table:
//
//	requiresAuth && !authenticated        -> redirect to login
//	target is login && authenticated      -> redirect to default
//	otherwise                             -> proceed
//
// It is a pure function: no session state is mutated.
func Decide(requiresAuth, targetIsLogin, authenticated bool) Decision {
	if requiresAuth && !authenticated {
		return RedirectToLogin
	}
	if targetIsLogin && authenticated {
		return RedirectToDefault
	}
	return Proceed
}
