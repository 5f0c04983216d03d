// internal/config/normalize.go
package config

import (
	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Defaults applied by Normalize.
const (
	DefaultHardwareTimeoutMs = 1000
	DefaultEventPollMs       = 20
	DefaultFocusMode         = "auto"
	DefaultFocusTimeoutMs    = 10000
	DefaultMaxFocusAreas     = 1
	DefaultBaudRate          = 115200
	DefaultListen            = ":9105"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	h := &cfg.Adapter.Hardware

	if h.Transport == "" {
		h.Transport = TransportTCP
	}
	if h.TimeoutMs == 0 {
		h.TimeoutMs = DefaultHardwareTimeoutMs
	}
	if h.EventPollMs == 0 {
		h.EventPollMs = DefaultEventPollMs
	}
	if h.Transport == TransportRTU {
		if h.BaudRate == 0 {
			h.BaudRate = DefaultBaudRate
		}
		if h.DataBits == 0 {
			h.DataBits = 8
		}
		if h.Parity == "" {
			h.Parity = "N"
		}
		if h.StopBits == 0 {
			h.StopBits = 1
		}
	}

	// ------------------------------------------------------------
	// REGISTER MAP: pack missing indexes after the highest used word
	// ------------------------------------------------------------

	if h.Registers == nil {
		h.Registers = make(map[string]uint16)
	}

	next := uint32(0)
	for name, base := range h.Registers {
		idx, _ := hw.ParseIndex(name)
		if end := uint32(base) + uint32(idx.Words()); end > next {
			next = end
		}
	}
	if h.EventBlock != nil {
		if end := uint32(*h.EventBlock) + eventBlockWords; end > next {
			next = end
		}
	}

	// hw.Indexes order keeps the packed layout deterministic
	for _, idx := range hw.Indexes {
		if _, ok := h.Registers[idx.String()]; ok {
			continue
		}
		h.Registers[idx.String()] = uint16(next)
		next += uint32(idx.Words())
	}
	if h.EventBlock == nil {
		eb := uint16(next)
		h.EventBlock = &eb
	}

	// ------------------------------------------------------------
	// CONTROLLERS / AMBIENT
	// ------------------------------------------------------------

	if cfg.Adapter.Focus.Mode == "" {
		cfg.Adapter.Focus.Mode = DefaultFocusMode
	}
	if cfg.Adapter.Focus.TimeoutMs == 0 {
		cfg.Adapter.Focus.TimeoutMs = DefaultFocusTimeoutMs
	}
	if cfg.Adapter.Focus.MaxAreas == 0 {
		cfg.Adapter.Focus.MaxAreas = DefaultMaxFocusAreas
	}
	if cfg.Adapter.Log.Level == "" {
		cfg.Adapter.Log.Level = "info"
	}
	if cfg.Adapter.Log.Format == "" {
		cfg.Adapter.Log.Format = "text"
	}
	if cfg.Adapter.Server.Listen == "" {
		cfg.Adapter.Server.Listen = DefaultListen
	}
}
