// internal/config/config.go
package config

type Config struct {
	Adapter AdapterConfig `yaml:"adapter"`
}

type AdapterConfig struct {
	Hardware HardwareConfig `yaml:"hardware"`
	Focus    FocusConfig    `yaml:"focus"`
	Zoom     ZoomConfig     `yaml:"zoom"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// ---- HARDWARE ----

const (
	TransportTCP = "tcp"
	TransportRTU = "rtu"
	TransportSim = "sim"
)

type HardwareConfig struct {
	Transport string `yaml:"transport"` // tcp | rtu | sim
	Endpoint  string `yaml:"endpoint"`  // host:port or serial device
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// RTU only
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // N | E | O
	StopBits int    `yaml:"stop_bits"`

	// Event block: [sequence, changed index], polled every EventPollMs.
	EventPollMs int     `yaml:"event_poll_ms"`
	EventBlock  *uint16 `yaml:"event_block"`

	// Holding register base address per config index name; missing => packed after the highest used.
	Registers map[string]uint16 `yaml:"registers"`
}

// ---- FOCUS ----

type FocusConfig struct {
	Mode      string `yaml:"mode"`       // off | on | continuous | auto | macro | infinity
	TimeoutMs int    `yaml:"timeout_ms"` // bounded wait for the completion event
	MaxAreas  int    `yaml:"max_areas"`
}

// ---- ZOOM ----

type ZoomConfig struct {
	Stages []uint32 `yaml:"stages"` // Q16 scale factor per stage; empty => built-in table
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---- SERVER ----

type ServerConfig struct {
	Listen string `yaml:"listen"`
}
