package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sendarr/sendarr/vault"
)

var (
	credURL      string
	credUsername string
	credUseHTTPS bool
	credPort     int
)

// credentialsCmd groups the credential management subcommands.
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored qBittorrent credentials",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store server credentials in the vault",
	Long: `Store the qBittorrent server URL and login in the local vault.
The password is prompted without echo and stored encrypted.`,
	RunE: runCredentialsSet,
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials",
	RunE:  runCredentialsClear,
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored server settings (never the password)",
	RunE:  runCredentialsShow,
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)

	credentialsSetCmd.Flags().StringVar(&credURL, "url", "", "server URL, e.g. http://localhost:8080")
	credentialsSetCmd.Flags().StringVar(&credUsername, "username", "", "Web UI username")
	credentialsSetCmd.Flags().BoolVar(&credUseHTTPS, "use-https", false, "force https")
	credentialsSetCmd.Flags().IntVar(&credPort, "port", 0, "custom port override")
	credentialsSetCmd.MarkFlagRequired("url")
	credentialsSetCmd.MarkFlagRequired("username")
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	fmt.Print("Password (empty allowed): ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	creds := vault.ServerCredentials{
		URL:        strings.TrimSpace(credURL),
		Username:   strings.TrimSpace(credUsername),
		Password:   string(password),
		UseHTTPS:   credUseHTTPS,
		CustomPort: credPort,
	}

	if err := store.StoreCredentials(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	// A fresh login is needed against the new credentials.
	client.InvalidateSession()

	fmt.Printf("Credentials for %s stored in %s.\n", creds.URL, store.Dir())
	return nil
}

func runCredentialsClear(cmd *cobra.Command, args []string) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	client.InvalidateSession()
	fmt.Println("Stored credentials removed.")
	return nil
}

func runCredentialsShow(cmd *cobra.Command, args []string) error {
	creds, err := store.Credentials()
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	if creds.URL == "" && creds.Username == "" {
		fmt.Println("No credentials stored.")
		return nil
	}

	fmt.Printf("Server URL: %s\n", creds.URL)
	fmt.Printf("Username:   %s\n", creds.Username)
	fmt.Printf("Use HTTPS:  %v\n", creds.UseHTTPS)
	if creds.CustomPort > 0 {
		fmt.Printf("Port:       %d\n", creds.CustomPort)
	}
	if creds.Password != "" {
		fmt.Println("Password:   (stored)")
	}
	return nil
}
