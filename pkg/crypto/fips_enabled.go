//go:build fips

package crypto

// FIPSMode reports whether the binary was built in FIPS mode.
// In FIPS mode a failed power-on or conditional self-test panics.
func FIPSMode() bool { return true }
