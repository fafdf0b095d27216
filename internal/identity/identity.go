// Package identity builds the User-Agent the CLI sends to the API so server
// request logs show which terminal a call came from.
package identity

import (
	"fmt"
	"os"
	"os/user"
)

const (
	// Product prefixes every agent string.
	Product = "todoapp-cli"
	// FallbackUser is used when the user cannot be determined
	FallbackUser = "unknown"
	// FallbackHostname is used when the hostname cannot be determined
	FallbackHostname = "localhost"
)

// UserAgent returns the agent string for this process, e.g.
// "todoapp-cli (alice@macbook)".
func UserAgent() string {
	return Format(getUser(), getHostname())
}

// Format builds the agent string from explicit values, applying fallbacks
// for empty ones.
func Format(usr, hostname string) string {
	if usr == "" {
		usr = FallbackUser
	}
	if hostname == "" {
		hostname = FallbackHostname
	}
	return fmt.Sprintf("%s (%s@%s)", Product, usr, hostname)
}

func getUser() string {
	if usr := os.Getenv("USER"); usr != "" {
		return usr
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return ""
}

func getHostname() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return ""
}
