// Package commands implements the otrcrypto developer CLI: self-tests,
// key generation, fingerprints, benchmarks and an observability server.
package commands
