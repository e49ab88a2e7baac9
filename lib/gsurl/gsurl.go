// Package gsurl holds pure helpers for taking apart and putting together
// Gradescope resource URLs. Nothing in here performs I/O.
package gsurl

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractID returns the path segment immediately following the named path
// component, e.g. ExtractID("https://host/courses/123", "courses") == "123".
// A URL without the component is a caller contract violation and returns
// an error rather than an empty id.
func ExtractID(rawurl string, component string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", err
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segments {
		if s == component && i+1 < len(segments) {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("no %q component in url %q", component, rawurl)
}

// TrailingID returns the final "/"-delimited path segment of an href.
// Submission and course links on listing pages carry their id there.
func TrailingID(href string) string {
	href = strings.TrimSuffix(href, "/")
	idx := strings.LastIndexByte(href, '/')
	if idx < 0 {
		return href
	}
	return href[idx+1:]
}
