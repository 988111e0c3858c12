// Package logger provides the two-audience logging used across backdate.
//
// Internal records (Info, Warning, Error) go to a structured slog log file
// when debug logging is enabled; user-facing lines (InfoToUser,
// WarningToUser, Success, StatusMessage) go to the terminal, colored with
// fatih/color. Color output degrades to plain text automatically when
// stdout is not a TTY or NO_COLOR is set.
//
// The production implementation is DefaultLogger; packages that only emit
// messages depend on the narrower common.Logger interface instead of this
// package.
package logger
