package headers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBrowserString(t *testing.T) {
	tests := []struct {
		in     string
		want   Browser
		wantOK bool
	}{
		{"chrome/120.0.6099.71|2", Browser{"chrome", "120.0.6099.71", "2"}, true},
		{"firefox/115.0|1", Browser{"firefox", "115.0", "1"}, true},
		{"safari/17.1", Browser{"safari", "17.1", ""}, true},
		{"edge|2", Browser{"edge", "", "2"}, true},
		{"*MISSING_VALUE*|", Browser{}, false},
		{"", Browser{}, false},
		{"/1.2|2", Browser{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseBrowserString(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMajorVersion(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"120.0.6099.71", 120},
		{"17", 17},
		{"", 0},
		{"beta.1", 0},
		{"12beta.1", 0},
	}

	for _, tt := range tests {
		if got := majorVersion(tt.in); got != tt.want {
			t.Errorf("majorVersion(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExpandBrowserSpecs(t *testing.T) {
	known := []string{
		"chrome/108.0.5359.124|2",
		"chrome/110.0.5481.77|2",
		"chrome/110.0.5481.77|1",
		"firefox/115.0|2",
		"*MISSING_VALUE*|",
	}

	tests := []struct {
		name        string
		specs       []BrowserSpec
		httpVersion string
		want        []string
	}{
		{
			name:        "empty specs admit everything for the version",
			specs:       nil,
			httpVersion: "2",
			want:        []string{"chrome/108.0.5359.124|2", "chrome/110.0.5481.77|2", "firefox/115.0|2"},
		},
		{
			name:        "name filter",
			specs:       []BrowserSpec{{Name: "chrome"}},
			httpVersion: "2",
			want:        []string{"chrome/108.0.5359.124|2", "chrome/110.0.5481.77|2"},
		},
		{
			name:        "version window",
			specs:       []BrowserSpec{{Name: "chrome", MinVersion: 109, MaxVersion: 115}},
			httpVersion: "2",
			want:        []string{"chrome/110.0.5481.77|2"},
		},
		{
			name:        "per-spec http version wins",
			specs:       []BrowserSpec{{Name: "chrome", HTTPVersion: "1"}},
			httpVersion: "2",
			want:        []string{"chrome/110.0.5481.77|1"},
		},
		{
			name:        "no match",
			specs:       []BrowserSpec{{Name: "safari"}},
			httpVersion: "2",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandBrowserSpecs(known, tt.specs, tt.httpVersion)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("whitelist mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBrowserFromUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36", "chrome"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0", "firefox"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36 Edg/108.0.1462.54", "edge"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", "safari"},
		{"curl/8.0", ""},
	}

	for _, tt := range tests {
		if got := browserFromUserAgent(tt.ua); got != tt.want {
			t.Errorf("browserFromUserAgent(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}
