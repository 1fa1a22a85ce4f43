package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills unset fields with their defaults. Explicit values
// are preserved; only zero values are replaced.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applySupervisorDefaults(&cfg.Supervisor)
	applyReadinessDefaults(&cfg.Readiness)
	applyModeDefaults(&cfg.Mode)
	applyClientLogDefaults(&cfg.ClientLog)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 9001
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Must cover a worst-case reconcile: restart + stack wait +
		// display wait + mode apply + settle.
		cfg.WriteTimeout = 120 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applySupervisorDefaults(cfg *SupervisorConfig) {
	if cfg.Command == "" {
		cfg.Command = "supervisorctl"
	}
	if strings.TrimSpace(cfg.WMService) == "" {
		cfg.WMService = "xfce"
	}
	if cfg.StatusTimeout == 0 {
		cfg.StatusTimeout = 5 * time.Second
	}
	if cfg.ControlTimeout == 0 {
		cfg.ControlTimeout = 10 * time.Second
	}
}

func applyReadinessDefaults(cfg *ReadinessConfig) {
	if cfg.StackWaitMax == 0 {
		cfg.StackWaitMax = 8 * time.Second
	}
	if cfg.DisplayWaitMax == 0 {
		cfg.DisplayWaitMax = 6 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
}

func applyModeDefaults(cfg *ModeConfig) {
	if cfg.Script == "" {
		cfg.Script = "/data/conf/scripts/kiosk_mode.sh"
	}
	if cfg.ApplyTimeout == 0 {
		cfg.ApplyTimeout = 20 * time.Second
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 800 * time.Millisecond
	}
}

func applyClientLogDefaults(cfg *ClientLogConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = 120 * time.Second
	}
	if cfg.MaxUserAgent == 0 {
		cfg.MaxUserAgent = 220
	}
	if cfg.MaxReferer == 0 {
		cfg.MaxReferer = 300
	}
}

// GetDefaultConfig returns a fully-defaulted configuration with
// client-identity logging enabled, matching the out-of-the-box behavior.
func GetDefaultConfig() *Config {
	cfg := &Config{
		ClientLog: ClientLogConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
