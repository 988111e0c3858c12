// Package common holds small interfaces shared by otherwise unrelated
// packages: the application-wide Logger interface and the Clock abstraction
// used by the backfill loop.
//
// Keeping these here avoids import cycles between the packages that produce
// log output and the logger package that implements it.
package common
