// Package config manages application-wide settings and directory structures.
// It follows XDG specifications for storing cache, configuration, and state,
// and lets ULA_* environment variables override both.
package config

import (
	"ula/pkg/common"
)

// OSType represents a host operating system.
type OSType = common.OSType

const (
	OSLinux   OSType = common.OSLinux
	OSAndroid OSType = common.OSAndroid
	OSUnknown OSType = common.OSUnknown
)

// Settings is the user-editable part of the configuration, kept in
// settings.json inside the config dir.
type Settings struct {
	// CatalogURL is where rootfs assets are looked up. A GitHub
	// "owner/repo" or an http(s) URL of a release index.
	CatalogURL string `json:"catalog_url"`
	// AppsBaseURL is the base from which per-app icons and descriptions are fetched.
	AppsBaseURL string `json:"apps_base_url"`
	// DefaultIconURI is returned when an app ships no icon.
	DefaultIconURI string `json:"default_icon_uri"`
	// DescriptionNotFound is returned when an app ships no description.
	DescriptionNotFound string `json:"description_not_found"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
	// HTTPRetries bounds retries for remote fetches.
	HTTPRetries int `json:"http_retries"`
}

// DefaultSettings returns the settings used when settings.json is absent.
func DefaultSettings() *Settings {
	return &Settings{
		CatalogURL:          "CypherpunkArmory/UserLAnd-Assets-Debian",
		AppsBaseURL:         "https://raw.githubusercontent.com/CypherpunkArmory/UserLAnd-Assets-Support/master/apps",
		DefaultIconURI:      "res://mipmap/ic_launcher_foreground",
		DescriptionNotFound: "Description not found.",
		LogLevel:            "info",
		HTTPRetries:         3,
	}
}

// envOverrides are read with envconfig using the ULA prefix.
type envOverrides struct {
	CacheDir    string `envconfig:"CACHE_DIR"`
	ConfigDir   string `envconfig:"CONFIG_DIR"`
	StateDir    string `envconfig:"STATE_DIR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	CatalogURL  string `envconfig:"CATALOG_URL"`
	AppsBaseURL string `envconfig:"APPS_URL"`
}
