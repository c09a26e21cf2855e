package i

import (
	"github.com/beka-birhanu/vinom-pathfinder/identity"
)

// Authenticator registers users and signs them in.
type Authenticator interface {
	Register(string, string) error
	SignIn(string, string) (*identity.User, string, error)
}
