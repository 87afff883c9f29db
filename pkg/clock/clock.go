// Package clock provides the injectable time source threaded through the
// Cost Ledger and Evidence Log constructors, so both can be driven
// deterministically in tests without touching the wall clock directly.
package clock

import "time"

// Source returns the current instant. Components take a Source instead
// of calling time.Now directly.
type Source func() time.Time

// Real is the production Source.
func Real() Source {
	return time.Now
}

// Fixed returns a Source that always reports t, for deterministic tests.
func Fixed(t time.Time) Source {
	return func() time.Time { return t }
}
