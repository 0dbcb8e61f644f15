package submission

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/blang/semver"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sendarr/sendarr/qbittorrent"
)

// MaxTorrentSize is the largest .torrent file the service will fetch and
// forward.
const MaxTorrentSize = 10 << 20 // 10 MiB

// MinimumServerVersion is the oldest qBittorrent release known to speak
// the API this client uses. Older servers trigger an advisory warning.
var MinimumServerVersion = semver.MustParse("4.1.0")

// Options are the per-torrent submission options. Per-call values win
// over stored defaults; boolean options are additive, a per-call false
// cannot unset a stored default.
type Options struct {
	Category      string
	SavePath      string
	Paused        bool
	SkipHashCheck bool
}

// merge overlays per-call options on top of the defaults.
func (o Options) merge(call *Options) Options {
	if call == nil {
		return o
	}
	out := o
	if call.Category != "" {
		out.Category = call.Category
	}
	if call.SavePath != "" {
		out.SavePath = call.SavePath
	}
	if call.Paused {
		out.Paused = true
	}
	if call.SkipHashCheck {
		out.SkipHashCheck = true
	}
	return out
}

// Result is the outcome of one submitted reference.
type Result struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ConnectionStatus is the outcome of a connection test.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ServerInfo aggregates the read-only server facts the CLI displays.
type ServerInfo struct {
	Version    string   `json:"version"`
	WebUIPort  int      `json:"web_ui_port"`
	Categories []string `json:"categories"`
}

// Service forwards torrent references to a qBittorrent server.
type Service struct {
	client   *qbittorrent.Client
	fetcher  *http.Client
	defaults Options
	logger   zerolog.Logger
}

// NewService creates a submission service with the given stored default
// options.
func NewService(client *qbittorrent.Client, defaults Options, logger zerolog.Logger) *Service {
	return &Service{
		client:   client,
		fetcher:  &http.Client{Timeout: 60 * time.Second},
		defaults: defaults,
		logger:   logger,
	}
}

// Send validates and submits a single torrent reference. Failures are
// captured in the result; Send never panics across the boundary.
func (s *Service) Send(ctx context.Context, ref string, opts *Options) Result {
	if err := s.submit(ctx, ref, opts); err != nil {
		s.logger.Debug().Err(err).Str("ref", ref).Msg("Submission failed")
		return Result{URL: ref, Error: err.Error()}
	}
	return Result{URL: ref, Success: true}
}

// SendBatch submits references strictly sequentially, isolating failures
// per item. The result slice has the same length and order as refs.
func (s *Service) SendBatch(ctx context.Context, refs []string, opts *Options) []Result {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		results = append(results, s.Send(ctx, ref, opts))
	}
	return results
}

func (s *Service) submit(ctx context.Context, ref string, opts *Options) error {
	merged := s.defaults.merge(opts)

	add := qbittorrent.AddTorrentRequest{
		Category:      merged.Category,
		SavePath:      merged.SavePath,
		Paused:        merged.Paused,
		SkipHashCheck: merged.SkipHashCheck,
	}

	switch {
	case IsMagnetLink(ref):
		add.MagnetURI = ref
	case IsTorrentFileURL(ref):
		data, err := s.fetchTorrent(ctx, ref)
		if err != nil {
			return err
		}
		add.FileData = data
	default:
		return fmt.Errorf("%w: %s", ErrInvalidReference, ref)
	}

	return s.client.AddTorrent(ctx, add)
}

// fetchTorrent downloads a remote .torrent file, enforcing MaxTorrentSize
// before anything reaches the server.
func (s *Service) fetchTorrent(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch torrent file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch torrent file: status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxTorrentSize {
		return nil, ErrPayloadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxTorrentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read torrent file: %w", err)
	}
	if len(data) > MaxTorrentSize {
		return nil, ErrPayloadTooLarge
	}
	return data, nil
}

// TestConnection checks that the server is reachable and authenticated,
// returning its version on success.
func (s *Service) TestConnection(ctx context.Context) ConnectionStatus {
	version, err := s.client.Version(ctx)
	if err != nil {
		return ConnectionStatus{Error: err.Error()}
	}

	if v, perr := semver.ParseTolerant(version); perr == nil && v.LT(MinimumServerVersion) {
		s.logger.Warn().
			Str("version", version).
			Str("minimum", MinimumServerVersion.String()).
			Msg("Server version is older than the minimum supported release")
	}

	return ConnectionStatus{Connected: true, Version: version}
}

// ServerInfo fetches the server version and preferences. The two reads
// are independent and issued in parallel.
func (s *Service) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var (
		version string
		prefs   *qbittorrent.Preferences
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.client.Version(ctx)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	g.Go(func() error {
		p, err := s.client.GetPreferences(ctx)
		if err != nil {
			return err
		}
		prefs = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info := &ServerInfo{Version: version, WebUIPort: prefs.WebUIPort}
	for name := range prefs.Categories {
		info.Categories = append(info.Categories, name)
	}
	sort.Strings(info.Categories)

	return info, nil
}
