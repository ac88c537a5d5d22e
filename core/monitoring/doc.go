// Package monitoring routes unexpected errors to an error tracker. The
// default reporter drops everything; the CLI installs a Sentry reporter when
// a DSN is configured.
package monitoring
