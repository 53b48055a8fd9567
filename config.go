package fountain

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, filled from FOUNTAIN_* env vars
// and optionally overridden by flags in the launcher.
type Config struct {
	Mode     string `env:"FOUNTAIN_MODE" envDefault:"local"`    // local | cluster
	Role     string `env:"FOUNTAIN_ROLE" envDefault:"master"`   // master | replica
	Address  string `env:"FOUNTAIN_ADDR" envDefault:":7373"`
	Replicas int    `env:"FOUNTAIN_REPLICAS" envDefault:"1"`

	WindowWidth  int    `env:"FOUNTAIN_WIDTH" envDefault:"800"`
	WindowHeight int    `env:"FOUNTAIN_HEIGHT" envDefault:"600"`
	WindowTitle  string `env:"FOUNTAIN_TITLE" envDefault:"Fountain"`
	Headless     bool   `env:"FOUNTAIN_HEADLESS" envDefault:"false"`

	ParticlesPerSecond float64 `env:"FOUNTAIN_RATE" envDefault:"400"`
	UpwardBiasScale    float64 `env:"FOUNTAIN_BIAS_SCALE" envDefault:"2"`
	UpwardBiasOffset   float64 `env:"FOUNTAIN_BIAS_OFFSET" envDefault:"2"`

	Debug bool `env:"FOUNTAIN_DEBUG" envDefault:"false"`
}

// ConfigFromEnv loads configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case "local", "cluster":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Role {
	case "master", "replica":
	default:
		return fmt.Errorf("unknown role %q", c.Role)
	}
	if c.Mode == "cluster" && c.Role == "master" && c.Replicas < 1 {
		return fmt.Errorf("cluster master needs at least one replica, got %d", c.Replicas)
	}
	if c.ParticlesPerSecond < 0 {
		return fmt.Errorf("negative particle rate %v", c.ParticlesPerSecond)
	}
	return nil
}

// ClusterConfig derives the transport topology from the config.
func (c Config) ClusterConfig() ClusterConfig {
	cluster := DefaultClusterConfig()
	cluster.Address = c.Address
	cluster.Replicas = c.Replicas
	cluster.ConnectTimeout = 10 * time.Second
	if c.Mode == "cluster" {
		if c.Role == "master" {
			cluster.Role = RoleMaster
		} else {
			cluster.Role = RoleReplica
		}
	}
	return cluster
}

// FountainParams derives the emitter tuning from the config.
func (c Config) FountainParams() FountainParams {
	params := DefaultFountainParams()
	params.ParticlesPerSecond = c.ParticlesPerSecond
	params.Spawn.BiasScale = float32(c.UpwardBiasScale)
	params.Spawn.BiasOffset = float32(c.UpwardBiasOffset)
	return params
}
