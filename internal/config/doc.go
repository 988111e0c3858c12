// Package config assembles the backdate runtime configuration from four
// layers, later layers winning:
//
//  1. built-in defaults
//  2. a TOML file (backdate.toml next to the repository, else
//     ~/.config/backdate/config.toml)
//  3. BACKDATE_* environment variables
//  4. command-line flags
//
// Finalize validates the assembled result: the date range must parse as
// YYYY-MM-DD and be ordered, the commit hour must be a valid hour of day,
// and the sentinel must be a single non-empty line. Validation failures are
// *errors.ConfigError values wrapping errors.ErrInvalidConfiguration, so
// callers can distinguish user mistakes from operational failures.
package config
