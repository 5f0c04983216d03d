// internal/hw/modbus/config.go
package modbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	cfg "github.com/tamzrod/camera-adapter/internal/config"
	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Config is the transport and register geometry of one component.
type Config struct {
	Transport string // tcp | rtu
	Endpoint  string
	UnitID    uint8
	Timeout   time.Duration

	BaudRate int
	DataBits int
	Parity   string
	StopBits int

	EventPoll  time.Duration
	EventBlock uint16
	Registers  map[hw.Index]uint16
}

// FromHardware converts a normalized hardware section.
func FromHardware(h cfg.HardwareConfig) (Config, error) {
	regs := make(map[hw.Index]uint16, len(h.Registers))
	for name, base := range h.Registers {
		idx, ok := hw.ParseIndex(name)
		if !ok {
			return Config{}, fmt.Errorf("hw modbus: unknown register %q", name)
		}
		regs[idx] = base
	}
	if h.EventBlock == nil {
		return Config{}, errors.New("hw modbus: event block not set (config not normalized?)")
	}

	return Config{
		Transport:  h.Transport,
		Endpoint:   h.Endpoint,
		UnitID:     h.UnitID,
		Timeout:    time.Duration(h.TimeoutMs) * time.Millisecond,
		BaudRate:   h.BaudRate,
		DataBits:   h.DataBits,
		Parity:     h.Parity,
		StopBits:   h.StopBits,
		EventPoll:  time.Duration(h.EventPollMs) * time.Millisecond,
		EventBlock: *h.EventBlock,
		Registers:  regs,
	}, nil
}

func (c Config) check() error {
	if c.Endpoint == "" {
		return errors.New("hw modbus: endpoint required")
	}
	if c.EventPoll <= 0 {
		return errors.New("hw modbus: event poll interval must be > 0")
	}
	for _, idx := range hw.Indexes {
		if _, ok := c.Registers[idx]; !ok {
			return fmt.Errorf("hw modbus: no register for %s", idx)
		}
	}
	return nil
}

func newHandler(c Config) (handler, error) {
	switch c.Transport {
	case "", cfg.TransportTCP:
		h := modbus.NewTCPClientHandler(c.Endpoint)
		h.Timeout = c.Timeout
		h.SlaveId = c.UnitID
		return h, nil

	case cfg.TransportRTU:
		h := modbus.NewRTUClientHandler(c.Endpoint)
		h.BaudRate = c.BaudRate
		h.DataBits = c.DataBits
		h.Parity = c.Parity
		h.StopBits = c.StopBits
		h.Timeout = c.Timeout
		h.SlaveId = c.UnitID
		return h, nil

	default:
		return nil, fmt.Errorf("hw modbus: unsupported transport %q", c.Transport)
	}
}
