package config

import (
	"github.com/sendarr/sendarr/qbittorrent"
	"github.com/sendarr/sendarr/submission"
	"github.com/sendarr/sendarr/vault"
)

// Provider merges the file configuration with the credential vault and
// implements qbittorrent.SettingsProvider. The vault record wins for
// fields it carries: it is the most recently saved full replacement,
// while the config file acts as a fallback for unmanaged setups.
type Provider struct {
	cfg   *Config
	vault *vault.Vault
}

// NewProvider creates a settings provider over the given config and vault.
func NewProvider(cfg *Config, v *vault.Vault) *Provider {
	return &Provider{cfg: cfg, vault: v}
}

// ServerConfig resolves the effective server settings. Missing or
// undecryptable vault credentials degrade to the file configuration;
// they never fail the lookup.
func (p *Provider) ServerConfig() (qbittorrent.ServerConfig, error) {
	out := qbittorrent.ServerConfig{
		URL:        p.cfg.Server.URL,
		Username:   p.cfg.Server.Username,
		UseHTTPS:   p.cfg.Server.UseHTTPS,
		CustomPort: p.cfg.Server.CustomPort,
	}

	stored, err := p.vault.Credentials()
	if err != nil {
		return out, err
	}

	if stored.URL != "" {
		out.URL = stored.URL
		out.UseHTTPS = stored.UseHTTPS
		out.CustomPort = stored.CustomPort
	}
	if stored.Username != "" {
		out.Username = stored.Username
		out.Password = stored.Password
	}

	return out, nil
}

// Options returns the stored default submission options.
func (p *Provider) Options() submission.Options {
	return submission.Options{
		Category:      p.cfg.Options.Category,
		SavePath:      p.cfg.Options.SavePath,
		Paused:        p.cfg.Options.Paused,
		SkipHashCheck: p.cfg.Options.SkipHashCheck,
	}
}
