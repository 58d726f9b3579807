package config

// Change classifies what applying a new configuration requires.
type Change int

const (
	// NoChange means the configurations are equal.
	NoChange Change = iota
	// Live changes are picked up by the next step without reallocating.
	Live
	// Rebuild changes regenerate the particle set.
	Rebuild
)

func (c Change) String() string {
	switch c {
	case NoChange:
		return "none"
	case Live:
		return "live"
	case Rebuild:
		return "rebuild"
	}
	return "unknown"
}

// Diff reports the heaviest change needed to go from old to next.
// Only the particle count reshapes geometry; everything else is live.
func Diff(old, next *Config) Change {
	if old.Count != next.Count {
		return Rebuild
	}
	if *old != *next {
		return Live
	}
	return NoChange
}
