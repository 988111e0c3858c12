// Package constants centralizes fixed values shared across the backdate
// application, chiefly the pieces of the version banner.
package constants

// AppName is the binary and lock/log file prefix.
const AppName = "backdate"

// Tagline is printed alongside version information.
const Tagline = "replay a date range as backdated commits"
