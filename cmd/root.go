package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sendarr/sendarr/config"
	"github.com/sendarr/sendarr/qbittorrent"
	"github.com/sendarr/sendarr/submission"
	"github.com/sendarr/sendarr/telemetry"
	"github.com/sendarr/sendarr/vault"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	store    *vault.Vault
	provider *config.Provider
	client   *qbittorrent.Client
	service  *submission.Service

	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build metadata injected by the linker.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sendarr",
	Short: "Forward magnet links and .torrent files to qBittorrent",
	Long: `sendarr is a CLI tool that forwards BitTorrent magnet links and
.torrent file URLs to a qBittorrent server, authenticating with
credentials kept in an encrypted local vault.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(infoCmd)
}

// initializeApp initializes the configuration, vault and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Open the credential vault
	mode := vault.ModeEncrypted
	if cfg.Vault.Plaintext {
		mode = vault.ModePlaintext
	}
	store, err = vault.New(cfg.Vault.Dir, mode, logger)
	if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	provider = config.NewProvider(cfg, store)

	client = qbittorrent.NewClient(provider, logger,
		qbittorrent.WithTimeout(cfg.Server.Timeout),
		qbittorrent.WithSessionTTL(cfg.Session.TTL),
		qbittorrent.WithUserAgent("sendarr/"+version),
		qbittorrent.WithReporter(telemetry.NewReporter(logger)),
	)

	service = submission.NewService(client, provider.Options(), logger)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; color only when stderr is a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to qBittorrent",
	Long:  `Test the connection to your qBittorrent server and display its version.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	srv, err := provider.ServerConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Testing connection to qBittorrent at %s...\n", srv.URL)

	status := service.TestConnection(context.Background())
	if !status.Connected {
		return fmt.Errorf("connection failed: %s", status.Error)
	}

	fmt.Println("✓ Connection successful!")
	fmt.Printf("- Server version: %s\n", status.Version)
	return nil
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show qBittorrent server information",
	Long:  `Display the server version, Web UI port and configured categories.`,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := service.ServerInfo(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get server info: %w", err)
	}

	fmt.Printf("qBittorrent server:\n")
	fmt.Printf("- Version: %s\n", info.Version)
	fmt.Printf("- Web UI port: %d\n", info.WebUIPort)

	if len(info.Categories) > 0 {
		fmt.Printf("\nCategories:\n")
		for _, c := range info.Categories {
			fmt.Printf("  • %s\n", c)
		}
	} else {
		fmt.Println("- No categories configured")
	}

	return nil
}
