package submission

import "errors"

// Common errors returned by the submission service.
var (
	// ErrInvalidReference is returned when the input is neither a valid
	// magnet URI nor an http(s) URL to a .torrent file.
	ErrInvalidReference = errors.New("not a valid magnet link or .torrent URL")

	// ErrPayloadTooLarge is returned when a fetched .torrent file exceeds
	// the maximum allowed size. Nothing is submitted downstream.
	ErrPayloadTooLarge = errors.New("torrent file exceeds maximum allowed size")
)
