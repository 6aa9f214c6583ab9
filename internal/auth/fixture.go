package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

const (
	DefaultUserFormat = "user%d"
	DefaultPassword   = "test"
)

// Fixture derives the login credentials of the seeded benchmark accounts.
// Every synthetic user shares Password; its login name is UserFormat applied
// to the numeric user id.
type Fixture struct {
	UserFormat string
	Password   string
}

// Credentials is a login name and password pair.
type Credentials struct {
	Username string
	Password string
}

func DefaultFixture() Fixture {
	return Fixture{UserFormat: DefaultUserFormat, Password: DefaultPassword}
}

// Validate reports whether the fixture can derive credentials.
func (f Fixture) Validate() error {
	verbs := strings.Count(strings.ReplaceAll(f.UserFormat, "%%", ""), "%")
	if verbs != 1 || !strings.Contains(f.UserFormat, "%d") {
		return fmt.Errorf("user format %q must contain exactly one %%d verb", f.UserFormat)
	}
	if f.Password == "" {
		return errors.New("fixture password is required")
	}
	return nil
}

// Credentials returns the login credentials for user.
func (f Fixture) Credentials(user workload.UserID) Credentials {
	return Credentials{
		Username: fmt.Sprintf(f.UserFormat, uint32(user)),
		Password: f.Password,
	}
}
