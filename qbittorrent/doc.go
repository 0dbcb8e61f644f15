// Package qbittorrent implements a client for the qBittorrent Web API v2.
//
// The client owns the full authentication lifecycle: it logs in with
// form-encoded credentials, caches the session cookie for a fixed TTL,
// and serializes concurrent login attempts so that at most one exchange
// is in flight while other callers adopt its result. Every outbound API
// call passes through a single request gateway that injects the session
// cookie and translates HTTP failures into the typed errors in errors.go.
//
// Authentication failures are deliberately opaque: callers only ever see
// the generic AuthFailureMessage, while status codes and response bodies
// go to the telemetry reporter.
//
// # Usage
//
//	client := qbittorrent.NewClient(settings, logger,
//	    qbittorrent.WithTimeout(15*time.Second))
//
//	version, err := client.Version(ctx)
//
//	err = client.AddTorrent(ctx, qbittorrent.AddTorrentRequest{
//	    MagnetURI: "magnet:?xt=urn:btih:...",
//	    Category:  "tv",
//	})
package qbittorrent
