// Package config holds the tunable parameters of a dot globe.
//
// Values are loaded from YAML over [DefaultConfig] and validated with a
// reject-only policy: an invalid value produces an error wrapping
// [ErrInvalidConfiguration] and is never clamped. [Diff] tells callers
// whether a change needs a full rebuild of the particle set or only a live
// parameter update.
package config
