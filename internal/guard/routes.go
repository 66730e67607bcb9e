package guard

import (
	"errors"
	"fmt"

	applog "tally/internal/log"
)

// Route is an entry in the routing table. The view rendered for it is
// opaque to the guard.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Table is a fixed list of named routes with one distinguished login
// route and one default route.
type Table struct {
	routes      []Route
	byName      map[string]Route
	loginName   string
	defaultName string
}

var ErrUnknownRoute = errors.New("unknown route")

// NewTable builds a routing table. The login and default names must both
// be present in the route list.
func NewTable(routes []Route, loginName, defaultName string) (*Table, error) {
	byName := make(map[string]Route, len(routes))
	for _, r := range routes {
		if _, dup := byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", r.Name)
		}
		byName[r.Name] = r
	}
	if _, ok := byName[loginName]; !ok {
		return nil, fmt.Errorf("login route %q: %w", loginName, ErrUnknownRoute)
	}
	if _, ok := byName[defaultName]; !ok {
		return nil, fmt.Errorf("default route %q: %w", defaultName, ErrUnknownRoute)
	}
	return &Table{
		routes:      routes,
		byName:      byName,
		loginName:   loginName,
		defaultName: defaultName,
	}, nil
}

// Lookup returns the route with the given name.
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Login returns the distinguished login route.
func (t *Table) Login() Route {
	return t.byName[t.loginName]
}

// Default returns the distinguished default route.
func (t *Table) Default() Route {
	return t.byName[t.defaultName]
}

// Routes returns a copy of the route list.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// AuthState exposes the single session fact the guard consults.
type AuthState interface {
	IsAuthenticated() bool
}

// Navigator runs transitions through the guard, resolving redirects to
// the route actually reached.
type Navigator struct {
	table   *Table
	auth    AuthState
	current Route
	logger  *applog.Logger
}

// NewNavigator creates a navigator positioned on the default route. No
// guard check runs until the first Navigate call.
func NewNavigator(table *Table, auth AuthState, logger *applog.Logger) *Navigator {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Navigator{
		table:   table,
		auth:    auth,
		current: table.Default(),
		logger:  logger.WithComponent(applog.ComponentGuard),
	}
}

// Navigate attempts a transition to the named route. The guard is
// consulted before the transition; a redirect target becomes the route
// reached. The returned route is always the one the navigator ends on.
func (n *Navigator) Navigate(name string) (Route, error) {
	target, ok := n.table.Lookup(name)
	if !ok {
		return n.current, fmt.Errorf("navigate to %q: %w", name, ErrUnknownRoute)
	}

	decision := Decide(target.RequiresAuth, target.Name == n.table.loginName, n.auth.IsAuthenticated())
	switch decision {
	case RedirectToLogin:
		target = n.table.Login()
	case RedirectToDefault:
		target = n.table.Default()
	}

	n.logger.Info("Route transition",
		applog.FieldRoute, target.Path,
		applog.FieldDecision, decision.String())

	n.current = target
	return target, nil
}

// Current returns the route the navigator is on.
func (n *Navigator) Current() Route {
	return n.current
}
