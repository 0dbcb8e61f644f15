// Package submission validates torrent references and forwards them to a
// qBittorrent server through the authenticated client.
//
// A reference is either a magnet URI (btih hash, 32-40 hex characters) or
// an http(s) URL to a .torrent file. Magnet links are submitted as-is;
// .torrent URLs are fetched first, with a 10 MiB payload cap enforced
// before anything is sent downstream. Batches are processed strictly
// sequentially with per-item failure isolation: one bad reference never
// aborts the rest, and the result slice mirrors the input in length and
// order.
package submission
