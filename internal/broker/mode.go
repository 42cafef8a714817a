package broker

import "fmt"

// Mode selects the broker's decision protocol. It is fixed at
// construction; callers wanting a different mode construct a new
// Broker.
type Mode int

const (
	// ModeReplay serves recorded interactions only; a miss fails.
	ModeReplay Mode = iota

	// ModeRecord always forwards to the live responder, even on a hit,
	// and appends every response to the cassette.
	ModeRecord

	// ModeAuto replays hits and records misses. Without a responder it
	// degrades to replay-only semantics.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeReplay:
		return "replay"
	case ModeRecord:
		return "record"
	case ModeAuto:
		return "auto"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name ("replay", "record", "auto") to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "replay":
		return ModeReplay, nil
	case "record":
		return ModeRecord, nil
	case "auto":
		return ModeAuto, nil
	default:
		return ModeReplay, fmt.Errorf("unknown broker mode %q: must be one of replay, record, auto", name)
	}
}
