package jellyfin

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CheckMinimumVersion verifies that a server's reported version satisfies
// the configured minimum. An empty reported version is accepted: older
// servers behind proxies sometimes strip it, and rejecting them would lock
// out working setups.
func CheckMinimumVersion(reported, minimum string) error {
	if reported == "" || minimum == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minimum, err)
	}
	v, err := semver.NewVersion(reported)
	if err != nil {
		// Non-semver version strings are accepted for the same reason as
		// empty ones.
		return nil
	}
	if !constraint.Check(v) {
		return fmt.Errorf("server version %s is below the minimum supported %s", reported, minimum)
	}
	return nil
}
