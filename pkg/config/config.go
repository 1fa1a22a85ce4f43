// Package config loads and validates kioskd configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (KIOSKD_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the kioskd daemon configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server configures the HTTP control surface.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Supervisor configures the external process supervisor the desktop
	// stack is managed through.
	Supervisor SupervisorConfig `mapstructure:"supervisor" yaml:"supervisor"`

	// Readiness configures stack and display readiness probing.
	Readiness ReadinessConfig `mapstructure:"readiness" yaml:"readiness"`

	// Mode configures the external kiosk-mode toggle script.
	Mode ModeConfig `mapstructure:"mode" yaml:"mode"`

	// ClientLog configures client-identity request logging.
	ClientLog ClientLogConfig `mapstructure:"client_log" yaml:"client_log"`

	// Metrics configures the Prometheus exposition endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the bind address. Default: 0.0.0.0
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP port. Default: 9001
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds reading the entire request. Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. A reconcile can block for
	// the sum of its constituent timeouts, so this must cover a worst-case
	// EnsureMode run. Default: 120s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive waits. Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// SupervisorConfig configures the supervisorctl collaborator.
type SupervisorConfig struct {
	// Command is the supervisorctl executable. Default: supervisorctl
	Command string `mapstructure:"command" validate:"required" yaml:"command"`

	// WMService is the window-manager service name. Default: xfce
	WMService string `mapstructure:"wm_service" validate:"required" yaml:"wm_service"`

	// DesktopService is the optional companion service. Empty, "none",
	// "null", "0", "false", or the WM name all mean "disabled".
	DesktopService string `mapstructure:"desktop_service" yaml:"desktop_service"`

	// StatusTimeout bounds one "supervisorctl status" call. Default: 5s
	StatusTimeout time.Duration `mapstructure:"status_timeout" yaml:"status_timeout"`

	// ControlTimeout bounds one start/stop call. Default: 10s
	ControlTimeout time.Duration `mapstructure:"control_timeout" yaml:"control_timeout"`
}

// ReadinessConfig configures readiness probing.
type ReadinessConfig struct {
	// StackWaitMax bounds the wait for the stack to report RUNNING after a
	// start or restart. Default: 8s
	StackWaitMax time.Duration `mapstructure:"stack_wait_max" yaml:"stack_wait_max"`

	// DisplayWaitMax bounds the wait for the display to respond. Default: 6s
	DisplayWaitMax time.Duration `mapstructure:"display_wait_max" yaml:"display_wait_max"`

	// PollInterval is the delay between probe attempts. Default: 200ms
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// ProbeTimeout bounds a single display probe invocation. Default: 3s
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`

	// DisplayReadyCommand, when set, is run through "/bin/sh -lc" instead
	// of the built-in xset/xdpyinfo probes; exit 0 means the display is up.
	DisplayReadyCommand string `mapstructure:"display_ready_command" yaml:"display_ready_command"`
}

// ModeConfig configures the kiosk-mode toggle script.
type ModeConfig struct {
	// Script is the path to the mode-toggle executable, invoked with a
	// single "on" or "off" argument. Default: /data/conf/scripts/kiosk_mode.sh
	Script string `mapstructure:"script" validate:"required" yaml:"script"`

	// ApplyTimeout bounds one script invocation. Default: 20s
	ApplyTimeout time.Duration `mapstructure:"apply_timeout" yaml:"apply_timeout"`

	// SettleDelay is the pause after a successful apply, letting the
	// desktop finish rendering before status is reported. Default: 800ms
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`

	// WatchScript enables an fsnotify watch on Script; when the script is
	// rewritten the cached mode resets to unknown so the next request
	// re-applies. Default: false
	WatchScript bool `mapstructure:"watch_script" yaml:"watch_script"`
}

// ClientLogConfig configures per-client request logging.
type ClientLogConfig struct {
	// Enabled turns client-identity logging on. Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// TTL is the dedup window: one line per (ip, user-agent) pair per TTL.
	// Default: 120s
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// MaxUserAgent clips the logged User-Agent header. Default: 220
	MaxUserAgent int `mapstructure:"max_user_agent" yaml:"max_user_agent"`

	// MaxReferer clips the logged Referer header. Default: 300
	MaxReferer int `mapstructure:"max_referer" yaml:"max_referer"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes /metrics on the control server. Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
// An empty configPath uses the default location; a missing file is not an
// error and yields the defaults, still subject to KIOSKD_* env overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)
	setDefaults(v)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv can resolve
// env-only overrides: viper only consults the environment for keys it
// knows about, so a key absent from both file and defaults would make its
// KIOSKD_* variable a silent no-op.
func setDefaults(v *viper.Viper) {
	def := GetDefaultConfig()

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", def.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	v.SetDefault("supervisor.command", def.Supervisor.Command)
	v.SetDefault("supervisor.wm_service", def.Supervisor.WMService)
	v.SetDefault("supervisor.desktop_service", def.Supervisor.DesktopService)
	v.SetDefault("supervisor.status_timeout", def.Supervisor.StatusTimeout)
	v.SetDefault("supervisor.control_timeout", def.Supervisor.ControlTimeout)

	v.SetDefault("readiness.stack_wait_max", def.Readiness.StackWaitMax)
	v.SetDefault("readiness.display_wait_max", def.Readiness.DisplayWaitMax)
	v.SetDefault("readiness.poll_interval", def.Readiness.PollInterval)
	v.SetDefault("readiness.probe_timeout", def.Readiness.ProbeTimeout)
	v.SetDefault("readiness.display_ready_command", def.Readiness.DisplayReadyCommand)

	v.SetDefault("mode.script", def.Mode.Script)
	v.SetDefault("mode.apply_timeout", def.Mode.ApplyTimeout)
	v.SetDefault("mode.settle_delay", def.Mode.SettleDelay)
	v.SetDefault("mode.watch_script", def.Mode.WatchScript)

	v.SetDefault("client_log.enabled", def.ClientLog.Enabled)
	v.SetDefault("client_log.ttl", def.ClientLog.TTL)
	v.SetDefault("client_log.max_user_agent", def.ClientLog.MaxUserAgent)
	v.SetDefault("client_log.max_referer", def.ClientLog.MaxReferer)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
}

// setupViper configures env overrides and file search paths.
// Environment variables use the KIOSKD_ prefix with underscores, e.g.
// KIOSKD_MODE_SCRIPT=/opt/kiosk.sh or KIOSKD_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("KIOSKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the config file if present. Returns whether a file
// was found; absence is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// decodeHooks parses durations from strings like "800ms" or bare numbers
// (interpreted as seconds, matching the original environment knobs). Bare
// numbers arrive as ints from YAML and as strings from the environment.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

func durationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		case int:
			return time.Duration(v) * time.Second, nil
		case string:
			if v == "" {
				return time.Duration(0), nil
			}
			if d, err := time.ParseDuration(v); err == nil {
				return d, nil
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(f * float64(time.Second)), nil
			}
			return time.ParseDuration(v)
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/kioskd or ~/.config/kioskd.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kioskd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "kioskd")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
