//go:build !fips

package crypto

// FIPSMode reports whether the binary was built in FIPS mode.
// In standard mode self-test failures are reported, not fatal.
func FIPSMode() bool { return false }
