// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// eventBlockWords is the width of the event block: sequence, changed index.
const eventBlockWords = 2

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	a := cfg.Adapter

	// ------------------------------------------------------------
	// HARDWARE TRANSPORT
	// ------------------------------------------------------------

	h := a.Hardware
	switch h.Transport {
	case "", TransportTCP, TransportRTU:
		if h.Endpoint == "" {
			return fmt.Errorf("hardware: endpoint required for transport %q", transportOrDefault(h.Transport))
		}
	case TransportSim:
	default:
		return fmt.Errorf("hardware: unknown transport %q", h.Transport)
	}

	if h.TimeoutMs < 0 {
		return fmt.Errorf("hardware: timeout_ms must be >= 0")
	}
	if h.EventPollMs < 0 {
		return fmt.Errorf("hardware: event_poll_ms must be >= 0")
	}

	if h.Transport == TransportRTU {
		switch h.Parity {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("hardware: parity must be N, E or O, got %q", h.Parity)
		}
		if h.DataBits != 0 && (h.DataBits < 5 || h.DataBits > 8) {
			return fmt.Errorf("hardware: data_bits must be 5..8, got %d", h.DataBits)
		}
		if h.StopBits != 0 && h.StopBits != 1 && h.StopBits != 2 {
			return fmt.Errorf("hardware: stop_bits must be 1 or 2, got %d", h.StopBits)
		}
		if h.BaudRate < 0 {
			return fmt.Errorf("hardware: baud_rate must be > 0")
		}
	}

	// ------------------------------------------------------------
	// REGISTER GEOMETRY VALIDATION
	// ------------------------------------------------------------

	type span struct {
		start uint32
		end   uint32
		name  string
	}
	var spans []span

	add := func(name string, base uint16, words int) error {
		start := uint32(base)
		end := start + uint32(words) - 1
		if end > 0xFFFF {
			return fmt.Errorf("register %s: range %d-%d exceeds address space", name, start, end)
		}
		for _, s := range spans {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"register overlap: %s range=%d-%d overlaps with %s range=%d-%d",
					name, start, end, s.name, s.start, s.end,
				)
			}
		}
		spans = append(spans, span{start: start, end: end, name: name})
		return nil
	}

	for name, base := range h.Registers {
		idx, ok := hw.ParseIndex(name)
		if !ok {
			return fmt.Errorf("hardware: unknown register %q", name)
		}
		if err := add(name, base, idx.Words()); err != nil {
			return err
		}
	}
	if h.EventBlock != nil {
		if err := add("event_block", *h.EventBlock, eventBlockWords); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// FOCUS / ZOOM
	// ------------------------------------------------------------

	switch a.Focus.Mode {
	case "", "off", "on", "continuous", "auto", "macro", "infinity":
	default:
		return fmt.Errorf("focus: unknown mode %q", a.Focus.Mode)
	}
	if a.Focus.TimeoutMs < 0 {
		return fmt.Errorf("focus: timeout_ms must be >= 0")
	}
	if a.Focus.MaxAreas < 0 {
		return fmt.Errorf("focus: max_areas must be >= 0")
	}

	for i, s := range a.Zoom.Stages {
		if s == 0 {
			return fmt.Errorf("zoom: stage %d scale factor must be > 0", i)
		}
		if i > 0 && s <= a.Zoom.Stages[i-1] {
			return fmt.Errorf("zoom: stages must increase monotonically (stage %d=%d <= stage %d=%d)",
				i, s, i-1, a.Zoom.Stages[i-1])
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch a.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", a.Log.Level)
	}
	switch a.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", a.Log.Format)
	}

	return nil
}

func transportOrDefault(t string) string {
	if t == "" {
		return TransportTCP
	}
	return t
}
