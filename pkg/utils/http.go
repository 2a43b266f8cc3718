package utils

import (
	"net/http"
	"net/url"
)

// UserAgent identifies the worker to export endpoints.
const UserAgent = "recipepipe-worker/1.0"

// IsValidURL reports whether raw is an absolute http(s) URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
func BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Add("User-Agent", UserAgent)
	headers.Add("Accept", "application/json")

	for key, value := range customHeaders {
		headers.Add(key, value)
	}

	return headers
}
