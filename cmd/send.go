package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sendarr/sendarr/submission"
)

var (
	sendCategory  string
	sendSavePath  string
	sendPaused    bool
	sendSkipCheck bool
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <magnet-or-torrent-url>...",
	Short: "Send torrents to qBittorrent",
	Long: `Send one or more magnet links or .torrent file URLs to qBittorrent.

Multiple references are submitted sequentially; a failing reference
never aborts the rest of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendCategory, "category", "c", "", "torrent category")
	sendCmd.Flags().StringVar(&sendSavePath, "save-path", "", "download directory on the server")
	sendCmd.Flags().BoolVar(&sendPaused, "paused", false, "add torrents in paused state")
	sendCmd.Flags().BoolVar(&sendSkipCheck, "skip-check", false, "skip hash checking")
}

func runSend(cmd *cobra.Command, args []string) error {
	// Per-call options only when a flag was actually given, so stored
	// defaults keep applying otherwise.
	var opts *submission.Options
	if cmd.Flags().Changed("category") || cmd.Flags().Changed("save-path") ||
		cmd.Flags().Changed("paused") || cmd.Flags().Changed("skip-check") {
		opts = &submission.Options{
			Category:      sendCategory,
			SavePath:      sendSavePath,
			Paused:        sendPaused,
			SkipHashCheck: sendSkipCheck,
		}
	}

	results := service.SendBatch(context.Background(), args, opts)

	var failed int
	for _, r := range results {
		if r.Success {
			fmt.Printf("✓ %s\n", r.URL)
		} else {
			failed++
			fmt.Printf("✗ %s\n  %s\n", r.URL, r.Error)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d torrents failed", failed, len(results))
	}

	fmt.Printf("\nSent %d torrent(s) to qBittorrent.\n", len(results))
	return nil
}
