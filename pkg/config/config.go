package config

import (
	"fmt"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"

	"ula/pkg/common"
	"ula/pkg/lazyjson"
)

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetCacheDir() string
	GetConfigDir() string
	GetStateDir() string
	GetFilesDir() string
	GetAppsDir() string
	GetDownloadDir() string
	GetSupportAssetsDir() string
	GetDatabasePath() string
	GetOS() OSType
	GetUser() string
	GetSettings() Settings
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetCacheDir(string)
	SetConfigDir(string)
	SetStateDir(string)
	UpdateSettings(func(*Settings) error) error
}

// Config holds the base directories and system info for ula.
// Mutable
type Config struct {
	cacheDir  string
	configDir string
	stateDir  string

	filesDir    string
	appsDir     string
	downloadDir string
	supportDir  string
	dbPath      string

	os   OSType
	user string

	settings lazyjson.Manager[Settings]
	env      envOverrides

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetCacheDir() string     { return c.cacheDir }
func (c *Config) GetConfigDir() string    { return c.configDir }
func (c *Config) GetStateDir() string     { return c.stateDir }
func (c *Config) GetFilesDir() string     { return c.filesDir }
func (c *Config) GetAppsDir() string      { return c.appsDir }
func (c *Config) GetDownloadDir() string  { return c.downloadDir }
func (c *Config) GetDatabasePath() string { return c.dbPath }
func (c *Config) GetOS() OSType           { return c.os }
func (c *Config) GetUser() string         { return c.user }

// GetSupportAssetsDir holds host helper files linked into every filesystem's support/ dir.
func (c *Config) GetSupportAssetsDir() string { return c.supportDir }

// GetSettings returns a copy of the current settings with environment
// overrides applied. A missing or unreadable settings.json yields defaults.
func (c *Config) GetSettings() Settings {
	s := *DefaultSettings()
	if cur, err := c.settings.Get(); err == nil {
		s = *cur
	}
	if c.env.LogLevel != "" {
		s.LogLevel = c.env.LogLevel
	}
	if c.env.CatalogURL != "" {
		s.CatalogURL = c.env.CatalogURL
	}
	if c.env.AppsBaseURL != "" {
		s.AppsBaseURL = c.env.AppsBaseURL
	}
	return s
}

// UpdateSettings applies fn to settings.json and saves it.
func (c *Config) UpdateSettings(fn func(*Settings) error) error {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	return c.settings.Update(fn)
}

func (c *Config) SetCacheDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.cacheDir = s
	c.updateDerived()
}

func (c *Config) SetConfigDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.configDir = s
	c.updateDerived()
}

func (c *Config) SetStateDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.stateDir = s
	c.updateDerived()
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.filesDir = filepath.Join(c.stateDir, "files")
	c.appsDir = filepath.Join(c.filesDir, "apps")
	c.dbPath = filepath.Join(c.stateDir, "ula.db")
	c.downloadDir = filepath.Join(c.cacheDir, "downloads")
	c.supportDir = filepath.Join(c.stateDir, "support")
	c.settings = lazyjson.New[Settings](filepath.Join(c.configDir, "settings.json"),
		lazyjson.WithDefaultValue(DefaultSettings))
}

// Init initializes the configuration from XDG base directories and
// ULA_* environment overrides.
func Init() (ReadOnly, error) {
	var env envOverrides
	if err := envconfig.Process("ula", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	c := &Config{
		cacheDir:  filepath.Join(xdg.CacheHome, "ula"),
		configDir: filepath.Join(xdg.ConfigHome, "ula"),
		stateDir:  filepath.Join(xdg.StateHome, "ula"),
		os:        DetectOS(),
		user:      u.Username,
		env:       env,
	}
	if env.CacheDir != "" {
		c.cacheDir = env.CacheDir
	}
	if env.ConfigDir != "" {
		c.configDir = env.ConfigDir
	}
	if env.StateDir != "" {
		c.stateDir = env.StateDir
	}

	c.updateDerived()
	return c, nil
}

// NewForDirs builds a config rooted at explicit directories. Used by tests
// and by callers embedding ula.
func NewForDirs(cacheDir, configDir, stateDir string) *Config {
	c := &Config{
		cacheDir:  cacheDir,
		configDir: configDir,
		stateDir:  stateDir,
		os:        DetectOS(),
	}
	c.updateDerived()
	return c
}

// DetectOS reports the host OS. Android is recognised at runtime as well as
// by GOOS, since linux/arm64 binaries run unchanged on Android devices.
func DetectOS() OSType {
	if runtime.GOOS == "android" || isAndroidRuntime() {
		return OSAndroid
	}
	if o, err := common.ParseOS(runtime.GOOS); err == nil {
		return o
	}
	return OSUnknown
}
