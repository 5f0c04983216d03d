// internal/config/validate_test.go
package config

import (
	"testing"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// helper to build a tcp config with the given register bases
func tcpConfig(regs map[string]uint16) *Config {
	return &Config{
		Adapter: AdapterConfig{
			Hardware: HardwareConfig{
				Transport: TransportTCP,
				Endpoint:  "127.0.0.1:502",
				Registers: regs,
			},
		},
	}
}

func u16(v uint16) *uint16 { return &v }

// ---- tests ----

func TestValidate_MinimalTCP(t *testing.T) {
	if err := Validate(tcpConfig(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_SimNeedsNoEndpoint(t *testing.T) {
	cfg := &Config{Adapter: AdapterConfig{Hardware: HardwareConfig{Transport: TransportSim}}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EndpointRequired(t *testing.T) {
	cfg := tcpConfig(nil)
	cfg.Adapter.Hardware.Endpoint = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected endpoint error, got nil")
	}
}

func TestValidate_UnknownTransport(t *testing.T) {
	cfg := tcpConfig(nil)
	cfg.Adapter.Hardware.Transport = "usb"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected transport error, got nil")
	}
}

func TestValidate_UnknownRegister(t *testing.T) {
	if err := Validate(tcpConfig(map[string]uint16{"exposure": 0})); err == nil {
		t.Fatalf("expected unknown register error, got nil")
	}
}

func TestValidate_TouchingRegistersAllowed(t *testing.T) {
	cfg := tcpConfig(map[string]uint16{
		"digital_zoom":  0, // 0–3
		"focus_control": 4, // 4
	})
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RegisterOverlapDetected(t *testing.T) {
	cfg := tcpConfig(map[string]uint16{
		"digital_zoom":  0, // 0–3
		"focus_control": 3, // 3 → overlap
	})
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestValidate_EventBlockOverlapDetected(t *testing.T) {
	cfg := tcpConfig(map[string]uint16{"focus_distance": 10}) // 10–15
	cfg.Adapter.Hardware.EventBlock = u16(15)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestValidate_ZoomStagesMustIncrease(t *testing.T) {
	cfg := tcpConfig(nil)
	cfg.Adapter.Zoom.Stages = []uint32{65536, 70124, 70124}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected monotonic error, got nil")
	}
}

func TestValidate_FocusMode(t *testing.T) {
	cfg := tcpConfig(nil)
	cfg.Adapter.Focus.Mode = "fixed"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected focus mode error, got nil")
	}
	cfg.Adapter.Focus.Mode = "macro"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RTUParity(t *testing.T) {
	cfg := tcpConfig(nil)
	cfg.Adapter.Hardware.Transport = TransportRTU
	cfg.Adapter.Hardware.Endpoint = "/dev/ttyUSB0"
	cfg.Adapter.Hardware.Parity = "X"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected parity error, got nil")
	}
}

func TestNormalize_PacksMissingRegistersAfterUsed(t *testing.T) {
	cfg := tcpConfig(map[string]uint16{"digital_zoom": 100}) // 100–103
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(cfg)

	regs := cfg.Adapter.Hardware.Registers
	if len(regs) != len(hw.Indexes) {
		t.Fatalf("expected %d registers, got %d", len(hw.Indexes), len(regs))
	}
	if regs["digital_zoom"] != 100 {
		t.Fatalf("user register moved: %d", regs["digital_zoom"])
	}
	if regs["component_state"] != 104 {
		t.Fatalf("first packed register: got=%d want=104", regs["component_state"])
	}
	if cfg.Adapter.Hardware.EventBlock == nil {
		t.Fatalf("event block not assigned")
	}

	// normalized layout must still validate
	if err := Validate(cfg); err != nil {
		t.Fatalf("normalized config invalid: %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := tcpConfig(nil)
	Normalize(cfg)

	a := cfg.Adapter
	if a.Focus.TimeoutMs != DefaultFocusTimeoutMs {
		t.Fatalf("focus timeout: got=%d", a.Focus.TimeoutMs)
	}
	if a.Focus.MaxAreas != DefaultMaxFocusAreas {
		t.Fatalf("max areas: got=%d", a.Focus.MaxAreas)
	}
	if a.Focus.Mode != DefaultFocusMode {
		t.Fatalf("focus mode: got=%q", a.Focus.Mode)
	}
	if a.Hardware.EventPollMs != DefaultEventPollMs {
		t.Fatalf("event poll: got=%d", a.Hardware.EventPollMs)
	}
	if a.Log.Level != "info" || a.Log.Format != "text" {
		t.Fatalf("log defaults: %+v", a.Log)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("adapter:\n  hardware:\n    transport: sim\n    bogus: 1\n"))
	if err == nil {
		t.Fatalf("expected decode error for unknown key")
	}
}

func TestParse_Full(t *testing.T) {
	raw := []byte(`
adapter:
  hardware:
    transport: rtu
    endpoint: /dev/ttyUSB0
    unit_id: 3
    baud_rate: 57600
    parity: E
    registers:
      focus_control: 10
  focus:
    timeout_ms: 2500
  zoom:
    stages: [65536, 131072, 262144]
  log:
    level: debug
`)
	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	h := cfg.Adapter.Hardware
	if h.UnitID != 3 || h.BaudRate != 57600 || h.Registers["focus_control"] != 10 {
		t.Fatalf("hardware decoded wrong: %+v", h)
	}
	if len(cfg.Adapter.Zoom.Stages) != 3 || cfg.Adapter.Focus.TimeoutMs != 2500 {
		t.Fatalf("controllers decoded wrong: %+v", cfg.Adapter)
	}
}
