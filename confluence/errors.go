package confluence

import (
	"errors"

	bridgehttp "github.com/randalmurphal/adfbridge/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired     = errors.New("confluence url is required")
	ErrConfigMaxDepthInvalid = errors.New("max_depth must not be negative")
)

// Page errors.
var (
	ErrPageIDRequired   = errors.New("page id is required")
	ErrPageNotFound     = errors.New("confluence page not found")
	ErrTitleRequired    = errors.New("page title is required")
	ErrVersionMissing   = errors.New("page response has no version number")
	ErrSpaceKeyRequired = errors.New("space key is required")
	ErrSpaceNotFound    = errors.New("space not found")
)

func notFoundAs(err, sentinel error) error {
	if err != nil && bridgehttp.IsNotFound(err) {
		return errors.Join(sentinel, err)
	}
	return err
}

// IsNotFound reports whether the error indicates a page or space was not found.
func IsNotFound(err error) bool {
	return bridgehttp.IsNotFound(err) || errors.Is(err, ErrPageNotFound) ||
		errors.Is(err, ErrSpaceNotFound)
}
