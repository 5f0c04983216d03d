// internal/focus/mode.go
package focus

import "fmt"

// Mode is the focus-control value written to hardware.
type Mode uint16

const (
	ModeOff Mode = iota
	ModeOn
	ModeAuto // continuous
	ModeAutoLock
	ModeMacro
	ModeInfinity
)

var modeNames = map[Mode]string{
	ModeOff:      "off",
	ModeOn:       "on",
	ModeAuto:     "continuous",
	ModeAutoLock: "auto",
	ModeMacro:    "macro",
	ModeInfinity: "infinity",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", uint16(m))
}

// ParseMode resolves a mode name as used in config files.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

// immediate modes report a result without waiting on hardware.
func (m Mode) immediate() bool {
	return m == ModeAuto || m == ModeInfinity
}

// Status is the focus-status value read from hardware.
type Status uint16

const (
	StatusOff Status = iota
	StatusRequest
	StatusReached
	StatusUnableToReach
)

func (s Status) String() string {
	switch s {
	case StatusOff:
		return "off"
	case StatusRequest:
		return "request"
	case StatusReached:
		return "reached"
	case StatusUnableToReach:
		return "unable_to_reach"
	default:
		return fmt.Sprintf("status(%d)", uint16(s))
	}
}
