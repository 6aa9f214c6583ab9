package lobsters

import (
	"errors"
	"fmt"

	"github.com/torosent/lobsters-trawler/internal/auth"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

var (
	// ErrConfig marks an unusable adapter configuration, such as a malformed
	// base URL.
	ErrConfig = errors.New("invalid configuration")

	// ErrFixture marks a fixture login the target refused. The benchmark
	// accounts are missing or the login contract changed.
	ErrFixture = auth.ErrLoginRejected

	// ErrProtocolDrift marks a response whose status differs from the one the
	// operation promises.
	ErrProtocolDrift = errors.New("protocol drift")
)

// DriftError describes an unexpected response status.
type DriftError struct {
	Operation workload.Kind
	Method    string
	URL       string
	Expected  int
	Got       int
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d, want %d; the target was probably not primed",
		e.Operation, e.Method, e.URL, e.Got, e.Expected)
}

func (e *DriftError) Is(target error) bool { return target == ErrProtocolDrift }
