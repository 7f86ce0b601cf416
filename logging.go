package cachechain

import "cosmossdk.io/log"

// Logger is the structured logger every BackingStore accepts, matching
// the rest of this ecosystem's convention of threading a cosmossdk.io/log
// logger through storage-adjacent components rather than reaching for
// the standard library's log package or a bespoke interface.
type Logger = log.Logger

// NewNopLogger returns a Logger that discards everything, the default
// when WithLogger is omitted.
func NewNopLogger() Logger {
	return log.NewNopLogger()
}
