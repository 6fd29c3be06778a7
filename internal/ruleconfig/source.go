package ruleconfig

import (
	"encoding/json"
	"fmt"
)

// Source identifies where a rule's plugin bytes come from. Exactly one of
// Name, Path, GitHub, or URL is set; GitHub and URL sources are expected
// to have already been resolved to a local Path by the time a Source
// reaches the plugin host — resolving them over the network is out of
// scope here.
type Source struct {
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	As     string `json:"as,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	GitHub string `json:"github,omitempty"`
	URL    string `json:"url,omitempty"`
}

// UnmarshalJSON accepts either a bare string (taken as Name) or an object
// carrying one of the tagged shapes.
func (s *Source) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}
	type alias Source
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decoding rule source: %w", err)
	}
	*s = Source(a)
	return nil
}

// Resolved reports whether the source already names a local path, i.e. it
// needs no further resolution before the plugin host can load it.
func (s Source) Resolved() bool {
	return s.Path != ""
}

// DisplayName returns the best human-readable identifier available for
// error messages.
func (s Source) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.As != "":
		return s.As
	case s.Path != "":
		return s.Path
	case s.GitHub != "":
		return s.GitHub
	case s.URL != "":
		return s.URL
	default:
		return "<unknown rule source>"
	}
}
