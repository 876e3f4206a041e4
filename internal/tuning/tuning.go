package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the session-layer knobs. The engine core never truncates
// enumeration output, so the move cap lives out here with the callers that
// own that responsibility.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	ListenAddr string `yaml:"listen_addr"`
	StorePath  string `yaml:"store_path"`

	MovesMax     int `yaml:"moves_max"`
	BotThinkMs   int `yaml:"bot_think_ms"`
	WriteWaitMs  int `yaml:"write_wait_ms"`
	ReadWaitSecs int `yaml:"read_wait_secs"`
}

func Default() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		ListenAddr:      ":8080",
		StorePath:       "data/pending.db",
		MovesMax:        512,
		BotThinkMs:      1000,
		WriteWaitMs:     5000,
		ReadWaitSecs:    60,
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.MovesMax <= 0 {
		return t, fmt.Errorf("tuning.yaml: moves_max must be positive")
	}
	return t, nil
}
