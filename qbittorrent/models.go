package qbittorrent

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ServerConfig describes how to reach the qBittorrent server.
type ServerConfig struct {
	URL        string
	Username   string
	Password   string
	UseHTTPS   bool
	CustomPort int
}

// SettingsProvider supplies the server configuration on demand so that
// credential changes take effect without rebuilding the client.
type SettingsProvider interface {
	ServerConfig() (ServerConfig, error)
}

// staticSettings is a SettingsProvider over a fixed config.
type staticSettings struct {
	cfg ServerConfig
}

// StaticSettings wraps a fixed ServerConfig in a SettingsProvider.
func StaticSettings(cfg ServerConfig) SettingsProvider {
	return staticSettings{cfg: cfg}
}

func (s staticSettings) ServerConfig() (ServerConfig, error) {
	return s.cfg, nil
}

// resolveBaseURL builds the server base URL from the config, forcing the
// scheme to https when requested and replacing the port when a custom one
// is set.
func resolveBaseURL(cfg ServerConfig) (string, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}

	if cfg.UseHTTPS {
		u.Scheme = "https"
	}
	if cfg.CustomPort > 0 {
		u.Host = u.Hostname() + ":" + strconv.Itoa(cfg.CustomPort)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Preferences is the subset of the server preferences the client reads.
type Preferences struct {
	WebUIPort  int                 `json:"web_ui_port"`
	Categories map[string]Category `json:"categories"`
}

// Category describes a torrent category configured on the server.
type Category struct {
	Name     string `json:"name"`
	SavePath string `json:"savePath"`
}

// AddTorrentRequest describes one torrent submission. Exactly one of
// MagnetURI or FileData must be set.
type AddTorrentRequest struct {
	MagnetURI string
	FileData  []byte

	Category      string
	SavePath      string
	Paused        bool
	SkipHashCheck bool
}
