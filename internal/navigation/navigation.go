// Package navigation maps paths to views and applies the sign-in gate.
package navigation

import (
	"errors"
	"fmt"
	"strings"
)

// Route names.
const (
	Home     = "home"
	Login    = "login"
	Register = "register"
)

// Paths of the routes.
const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
)

// ErrRouteNotFound is returned for a path that matches no route.
var ErrRouteNotFound = errors.New("route not found")

// Route is a path bound to a named view.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// Routes is the application's route table.
var Routes = []Route{
	{Path: HomePath, Name: Home, RequiresAuth: true},
	{Path: LoginPath, Name: Login},
	{Path: RegisterPath, Name: Register},
}

// Decision is the outcome of a guard check. Redirect is empty when
// navigation may proceed to Route.
type Decision struct {
	Route    Route
	Redirect string
}

// Proceed reports whether navigation continues without a redirect.
func (d Decision) Proceed() bool {
	return d.Redirect == ""
}

// Match returns the route for path. A trailing slash and query are ignored.
func Match(path string) (Route, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = HomePath
	}

	for _, r := range Routes {
		if r.Path == path {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
}

// Guard decides where a navigation to path ends up. Routes that need a
// signed-in user send everyone else to /login; signed-in users visiting
// /login or /register are sent home.
func Guard(path string, authenticated bool) (Decision, error) {
	route, err := Match(path)
	if err != nil {
		return Decision{}, err
	}

	switch {
	case route.RequiresAuth && !authenticated:
		return Decision{Route: route, Redirect: LoginPath}, nil
	case (route.Name == Login || route.Name == Register) && authenticated:
		return Decision{Route: route, Redirect: HomePath}, nil
	default:
		return Decision{Route: route}, nil
	}
}

// Resolve follows redirects and returns the route finally shown.
func Resolve(path string, authenticated bool) (Route, error) {
	for i := 0; i < len(Routes)+1; i++ {
		d, err := Guard(path, authenticated)
		if err != nil {
			return Route{}, err
		}
		if d.Proceed() {
			return d.Route, nil
		}
		path = d.Redirect
	}
	return Route{}, fmt.Errorf("redirect loop resolving %s", path)
}
