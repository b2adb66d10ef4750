// Package clock provides a tiny time abstraction.
//
// Code that derives one-time codes or decides whether a device looks active
// should depend on the Clocker interface instead of calling time.Now()
// directly, so tests can pin time to a known instant.
package clock
