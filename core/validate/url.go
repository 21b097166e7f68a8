// Package validate checks clip form input before any network access.
// URL checks parse the string with net/url rather than matching a pattern,
// so a URL that passes here is one the fetcher can actually request.
package validate

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gaurav-prasanna/webclipper/core"
)

// Messages shown in the clip dialog.
const (
	MsgSelectDestination = "Please select the destination notebook."
	MsgInvalidURL        = "Please provide a valid URL."
)

// authoritySchemes need a host to be usable.
var authoritySchemes = map[string]bool{
	"http": true, "https": true,
	"ws": true, "wss": true,
	"ftp": true,
}

var errNotAbsolute = errors.New("must be an absolute URL")

// IsValidURL reports whether s is a well-formed absolute URL.
func IsValidURL(s string) bool {
	return absoluteURL(s) == nil
}

// ParseURL parses s and rejects relative or host-less URLs.
func ParseURL(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errNotAbsolute
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !parsed.IsAbs() {
		return nil, errNotAbsolute
	}
	if authoritySchemes[strings.ToLower(parsed.Scheme)] && parsed.Host == "" {
		return nil, errNotAbsolute
	}
	return parsed, nil
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	_, err := ParseURL(s)
	return err
}

// ClipRequest validates the form in dialog order: destination first, then URL.
// The first failing field wins.
func ClipRequest(req core.ClipRequest) error {
	if err := validation.Validate(req.DestinationID,
		validation.Required.Error(MsgSelectDestination),
	); err != nil {
		return &core.ValidationError{Field: "destination", Message: MsgSelectDestination}
	}
	if err := validation.Validate(req.URL,
		validation.By(absoluteURL),
	); err != nil {
		return &core.ValidationError{Field: "url", Message: MsgInvalidURL}
	}
	return nil
}

// Host returns the host part of rawURL, or "" if it does not parse.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
