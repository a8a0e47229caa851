package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "wavesd"

type Config struct {
	// Restore the last saved queue at startup (default: true).
	RestoreQueue *bool  `koanf:"restore_queue"`
	DBPath       string `koanf:"db_path"` // empty means $XDG_DATA_HOME/wavesd/wavesd.db

	Playback     PlaybackConfig     `koanf:"playback"`
	Notification NotificationConfig `koanf:"notification"`
	Session      SessionConfig      `koanf:"session"`
	Widget       WidgetConfig       `koanf:"widget"`
	Log          LogConfig          `koanf:"log"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// PlaybackConfig holds headset and audio focus policies.
type PlaybackConfig struct {
	DetectHeadset       *bool `koanf:"detect_headset"` // pause when audio becomes noisy (default: true)
	PlayOnHeadsetInsert bool  `koanf:"play_on_headset_insert"`
	ResumeOnGain        *bool `koanf:"resume_on_gain"` // resume after a transient loss (default: true)
	AudioDucking        *bool `koanf:"audio_ducking"`  // lower the volume on duck (default: true)
	PauseOnDuck         bool  `koanf:"pause_on_duck"`
	Volume              int   `koanf:"volume"` // initial volume 0-100 (default: 100)
}

// NotificationConfig holds status surface settings.
type NotificationConfig struct {
	LockscreenCover *bool `koanf:"lockscreen_cover"` // publish cover art with the session (default: true)
	Detach          *bool `koanf:"detach"`           // keep a dismissable surface while paused (default: true)
	CoverSize       int   `koanf:"cover_size"`       // thumbnail edge in pixels (default: 256)
}

// SessionConfig holds host session publication settings.
type SessionConfig struct {
	PublishInterval      time.Duration `koanf:"publish_interval"` // default: 1s
	StaleStateWorkaround bool          `koanf:"stale_state_workaround"`
	StaleStateTimeout    time.Duration `koanf:"stale_state_timeout"` // default: 15m
}

// WidgetConfig holds widget broadcast settings.
type WidgetConfig struct {
	Enabled      *bool  `koanf:"enabled"`       // default: true
	DefaultTitle string `koanf:"default_title"` // default: "No media"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File       string `koanf:"file"`  // empty means $XDG_STATE_HOME/wavesd/wavesd.log
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   *bool  `koanf:"compress"` // default: true
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	// SessionKey skips the stored session when set.
	SessionKey string `koanf:"session_key"`
}

// Load reads the layered config files. explicit, when not empty, is loaded
// last and must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}
	if explicit != "" {
		if err := k.Load(file.Provider(expandPath(explicit)), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/wavesd/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ShouldRestoreQueue reports whether the saved queue is restored at startup.
func (c *Config) ShouldRestoreQueue() bool {
	return boolOr(c.RestoreQueue, true)
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// Playback holds the resolved playback policies.
type Playback struct {
	DetectHeadset       bool
	PlayOnHeadsetInsert bool
	ResumeOnGain        bool
	AudioDucking        bool
	PauseOnDuck         bool
	Volume              int
}

// GetPlayback returns the playback configuration with defaults applied.
func (c *Config) GetPlayback() Playback {
	p := c.Playback
	volume := p.Volume
	if volume <= 0 || volume > 100 {
		volume = 100
	}
	return Playback{
		DetectHeadset:       boolOr(p.DetectHeadset, true),
		PlayOnHeadsetInsert: p.PlayOnHeadsetInsert,
		ResumeOnGain:        boolOr(p.ResumeOnGain, true),
		AudioDucking:        boolOr(p.AudioDucking, true),
		PauseOnDuck:         p.PauseOnDuck,
		Volume:              volume,
	}
}

// Notification holds the resolved status surface settings.
type Notification struct {
	LockscreenCover bool
	Detach          bool
	CoverSize       int
}

// GetNotification returns the notification configuration with defaults
// applied.
func (c *Config) GetNotification() Notification {
	n := c.Notification
	size := n.CoverSize
	if size <= 0 || size > 2048 {
		size = 256
	}
	return Notification{
		LockscreenCover: boolOr(n.LockscreenCover, true),
		Detach:          boolOr(n.Detach, true),
		CoverSize:       size,
	}
}

// GetSessionConfig returns the session configuration with defaults applied.
func (c *Config) GetSessionConfig() SessionConfig {
	cfg := c.Session
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = time.Second
	}
	if cfg.StaleStateTimeout <= 0 {
		cfg.StaleStateTimeout = 15 * time.Minute
	}
	return cfg
}

// Widget holds the resolved widget settings.
type Widget struct {
	Enabled      bool
	DefaultTitle string
}

// GetWidget returns the widget configuration with defaults applied.
func (c *Config) GetWidget() Widget {
	title := c.Widget.DefaultTitle
	if title == "" {
		title = "No media"
	}
	return Widget{
		Enabled:      boolOr(c.Widget.Enabled, true),
		DefaultTitle: title,
	}
}

// Log holds the resolved logging settings.
type Log struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// GetLog returns the logging configuration with defaults applied.
func (c *Config) GetLog() Log {
	l := c.Log
	out := Log{
		Level:      l.Level,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   boolOr(l.Compress, true),
	}
	switch out.Level {
	case "debug", "info", "warn", "error":
	default:
		out.Level = "info"
	}
	if out.File == "" {
		out.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}
	if out.MaxSizeMB <= 0 {
		out.MaxSizeMB = 10
	}
	if out.MaxBackups <= 0 {
		out.MaxBackups = 3
	}
	if out.MaxAgeDays <= 0 {
		out.MaxAgeDays = 28
	}
	return out
}
