// Package adapter holds the failure type shared by third-party integrations.
package adapter

import "errors"

// Failure is returned by integrations such as the weather client and the
// reminder mailer. Public is safe to show to API clients; Cause is for
// server-side logs only and never leaves the process.
type Failure struct {
	Public string
	Cause  error
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Public
	}
	return f.Public + ": " + f.Cause.Error()
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Fail builds a Failure from a public message and an optional cause.
func Fail(public string, cause error) *Failure {
	return &Failure{Public: public, Cause: cause}
}

// PublicMessage extracts the client-safe message from err. It reports false
// when err carries no Failure.
func PublicMessage(err error) (string, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Public, true
	}
	return "", false
}
