// internal/config/config.go
package config

type Config struct {
	Session   SessionConfig   `yaml:"session"`
	Transport TransportConfig `yaml:"transport"`
	Poll      PollConfig      `yaml:"poll"`
	Record    RecordConfig    `yaml:"record"`
	Log       LogConfig       `yaml:"log"`
}

// ---- SESSION ----

type SessionConfig struct {
	// TimeFormat overrides table 0's TM_FORMAT. "auto" or empty keeps it.
	TimeFormat string `yaml:"time_format"`

	// Layout pins the 2048 composite layout. "auto" or empty resolves it
	// from the offset header's firmware version.
	Layout string `yaml:"layout"`

	TimeoutMs       int            `yaml:"timeout_ms"`
	TableTimeoutsMs map[uint16]int `yaml:"table_timeouts_ms"`
}

// ---- TRANSPORT ----

const (
	TransportModbus = "modbus"
	TransportReplay = "replay"
)

type TransportConfig struct {
	Kind   string       `yaml:"kind"`
	Modbus ModbusConfig `yaml:"modbus"`
	Replay ReplayConfig `yaml:"replay"`
}

type ModbusConfig struct {
	Endpoint     string `yaml:"endpoint"`
	UnitID       uint8  `yaml:"unit_id"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	RequestAddr  uint16 `yaml:"request_addr"`
	ResponseAddr uint16 `yaml:"response_addr"`
}

type ReplayConfig struct {
	Path     string `yaml:"path"`
	Capture  string `yaml:"capture"`
	InMemory bool   `yaml:"in_memory"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int      `yaml:"interval_ms"`
	Tables     []uint16 `yaml:"tables"`
}

// ---- RECORD ----

type RecordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Capture string `yaml:"capture"` // empty: a fresh uuid per run
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}
