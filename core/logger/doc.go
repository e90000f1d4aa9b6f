// Package logger is a standardized event logging framework for the shell
// and its SSH front end. Events are written as newline delimited JSON so
// sessions can be audited and aggregated offline.
package logger
