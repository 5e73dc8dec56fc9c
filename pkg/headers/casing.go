package headers

import "strings"

// pascalizeFull lists the header segments emitted fully uppercased instead of
// title-cased.
var pascalizeFull = map[string]string{
	"dnt": "DNT",
	"rtt": "RTT",
	"ect": "ECT",
}

// Pascalize normalises a header name to HTTP/1-style casing: each dash-
// separated segment gets an uppercase initial, with DNT/RTT/ECT uppercased in
// full. Pseudo-headers and sec-ch-ua client hints are preserved verbatim.
// The transformation is idempotent.
func Pascalize(name string) string {
	if strings.HasPrefix(name, ":") || strings.HasPrefix(strings.ToLower(name), "sec-ch-ua") {
		return name
	}

	segments := strings.Split(name, "-")
	for i, segment := range segments {
		lower := strings.ToLower(segment)
		if full, ok := pascalizeFull[lower]; ok {
			segments[i] = full
			continue
		}
		if lower == "" {
			continue
		}
		segments[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(segments, "-")
}

// secFetchHTTP1 is the top-level navigation sec-fetch block in HTTP/1 casing.
var secFetchHTTP1 = []Header{
	{Name: "Sec-Fetch-Dest", Value: "document"},
	{Name: "Sec-Fetch-Mode", Value: "navigate"},
	{Name: "Sec-Fetch-Site", Value: "none"},
	{Name: "Sec-Fetch-User", Value: "?1"},
}

// secFetchHTTP2 is the same block in HTTP/2 casing.
var secFetchHTTP2 = []Header{
	{Name: "sec-fetch-dest", Value: "document"},
	{Name: "sec-fetch-mode", Value: "navigate"},
	{Name: "sec-fetch-site", Value: "none"},
	{Name: "sec-fetch-user", Value: "?1"},
}

// secFetchEligible reports whether the sampled browser ships sec-fetch
// headers: Chrome since 76, Firefox since 90, Edge since 79.
func secFetchEligible(b Browser) bool {
	major := majorVersion(b.Version)
	switch strings.ToLower(b.Name) {
	case "chrome":
		return major >= 76
	case "firefox":
		return major >= 90
	case "edge":
		return major >= 79
	}
	return false
}
