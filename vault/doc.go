// Package vault stores qBittorrent server credentials on disk.
//
// Credentials are split into two records: the public part (server URL,
// HTTPS flag, custom port) is written as plaintext JSON, while the
// sensitive part (username, password) is encrypted with AES-256-GCM under
// a key derived from locally generated key material. The key material is
// created once per installation and reused; it never leaves the vault
// directory.
//
// The vault operates in one of two modes chosen at construction time:
// ModeEncrypted (the default) or ModePlaintext, which skips encryption
// entirely and keeps the sensitive record as plain JSON. The mode is a
// deliberate configuration decision, never a runtime capability probe.
//
// # Usage
//
//	v, err := vault.New(dir, vault.ModeEncrypted, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = v.StoreCredentials(vault.ServerCredentials{
//	    URL:      "http://localhost:8080",
//	    Username: "admin",
//	    Password: "adminadmin",
//	})
//
//	creds, err := v.Credentials()
package vault
