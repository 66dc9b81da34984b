package bot

import (
	"fmt"
	"strconv"
	"strings"

	coreconfig "github.com/m3rciful/codegate/core/config"
	coredatabase "github.com/m3rciful/codegate/core/database"
)

// GateConfig names the channel users must join before receiving media.
type GateConfig struct {
	// Channel is "@username" or a numeric chat id such as -1001234567890.
	Channel string `yaml:"channel" toml:"channel" envconfig:"FORCE_CHANNEL"`
	// InviteURL replaces the default t.me link; required for numeric channel ids.
	InviteURL string `yaml:"invite_url" toml:"invite_url" envconfig:"GATE_INVITE_URL"`
}

// EventsConfig enables audit events. An empty NATSURL disables publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" toml:"nats_url" envconfig:"NATS_URL"`
}

// Config is the full codegate configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database" toml:"database"`
	Gate     GateConfig          `yaml:"gate" toml:"gate"`
	Events   EventsConfig        `yaml:"events" toml:"events"`
}

// CoreConfig exposes the embedded runtime configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads a YAML or TOML file, overlays the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return err
	}
	return normalizeGate(&cfg.Gate)
}

func normalizeGate(g *GateConfig) error {
	g.Channel = strings.TrimSpace(g.Channel)
	g.InviteURL = strings.TrimSpace(g.InviteURL)
	switch {
	case g.Channel == "":
		return fmt.Errorf("gate.channel is required")
	case strings.HasPrefix(g.Channel, "@"):
		if len(g.Channel) == 1 {
			return fmt.Errorf("gate.channel %q has no username", g.Channel)
		}
	default:
		if _, err := strconv.ParseInt(g.Channel, 10, 64); err != nil {
			if strings.ContainsAny(g.Channel, " /") {
				return fmt.Errorf("invalid gate.channel %q; use @username or a numeric chat id", g.Channel)
			}
			g.Channel = "@" + g.Channel
			return nil
		}
		if g.InviteURL == "" {
			return fmt.Errorf("gate.invite_url is required when gate.channel is a numeric chat id")
		}
	}
	return nil
}
