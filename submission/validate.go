package submission

import (
	"net/url"
	"regexp"
	"strings"
)

// magnetPattern matches a magnet URI with a btih hash of 32-40 hex
// characters, optionally followed by additional &key=value parameters.
var magnetPattern = regexp.MustCompile(`^magnet:\?xt=urn:btih:[0-9a-fA-F]{32,40}(&.*)?$`)

// IsMagnetLink reports whether ref is a well-formed magnet URI.
func IsMagnetLink(ref string) bool {
	return magnetPattern.MatchString(ref)
}

// IsTorrentFileURL reports whether ref is an http(s) URL pointing to a
// .torrent resource.
func IsTorrentFileURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".torrent")
}
