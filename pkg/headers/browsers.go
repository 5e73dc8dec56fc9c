package headers

import (
	"strconv"
	"strings"

	"github.com/jihwankim/headerforge/pkg/bayesian"
)

// Browser identifies a sampled browser: family name, full dotted version, and
// the HTTP version its headers were generated for.
type Browser struct {
	Name        string
	Version     string
	HTTPVersion string
}

// parseBrowserString parses a browser identifier of the shape
// "name/dottedVersion|httpVersion". The *MISSING_VALUE*| sentinel and
// anything without a name parse as absent.
func parseBrowserString(s string) (Browser, bool) {
	if s == "" || strings.HasPrefix(s, bayesian.MissingValue) {
		return Browser{}, false
	}

	rest := s
	httpVersion := ""
	if i := strings.LastIndex(s, "|"); i >= 0 {
		rest, httpVersion = s[:i], s[i+1:]
	}

	name := rest
	version := ""
	if i := strings.Index(rest, "/"); i >= 0 {
		name, version = rest[:i], rest[i+1:]
	}
	if name == "" {
		return Browser{}, false
	}
	return Browser{Name: name, Version: version, HTTPVersion: httpVersion}, true
}

// majorVersion extracts the leading dotted segment as an integer.
// Non-numeric segments count as 0.
func majorVersion(version string) int {
	segment := version
	if i := strings.Index(version, "."); i >= 0 {
		segment = version[:i]
	}
	n, err := strconv.Atoi(segment)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// matchesSpec reports whether a known browser line satisfies one requested
// spec under the request-level HTTP version preference.
func matchesSpec(b Browser, spec BrowserSpec, httpVersion string) bool {
	if spec.Name != "" && !strings.EqualFold(b.Name, spec.Name) {
		return false
	}
	major := majorVersion(b.Version)
	if major < spec.MinVersion {
		return false
	}
	if spec.MaxVersion > 0 && major > spec.MaxVersion {
		return false
	}
	wantHTTP := spec.HTTPVersion
	if wantHTTP == "" {
		wantHTTP = httpVersion
	}
	if wantHTTP != "" && b.HTTPVersion != wantHTTP {
		return false
	}
	return true
}

// expandBrowserSpecs maps the requested specs onto the known
// browser-identifier strings, producing the *BROWSER_HTTP whitelist. An
// empty spec list admits every known browser for the HTTP version.
func expandBrowserSpecs(known []string, specs []BrowserSpec, httpVersion string) []string {
	if len(specs) == 0 {
		specs = []BrowserSpec{{}}
	}

	var out []string
	seen := make(map[string]struct{}, len(known))
	for _, line := range known {
		b, ok := parseBrowserString(line)
		if !ok {
			continue
		}
		for _, spec := range specs {
			if matchesSpec(b, spec, httpVersion) {
				if _, dup := seen[line]; !dup {
					seen[line] = struct{}{}
					out = append(out, line)
				}
				break
			}
		}
	}
	return out
}

// browserFromUserAgent detects the browser family a user-agent string
// belongs to, for header-order selection. Edge and Firefox are matched before
// Chrome and Safari because their user agents embed those tokens too.
func browserFromUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "Firefox"):
		return "firefox"
	case strings.Contains(ua, "Edg"):
		return "edge"
	case strings.Contains(ua, "Chrome"):
		return "chrome"
	case strings.Contains(ua, "Safari"):
		return "safari"
	}
	return ""
}
