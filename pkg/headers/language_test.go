package headers

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAcceptLanguage(t *testing.T) {
	tests := []struct {
		name    string
		locales []string
		want    string
	}{
		{
			name:    "empty falls back to en-US",
			locales: nil,
			want:    "en-US,en;q=0.9",
		},
		{
			name:    "single locale",
			locales: []string{"de-DE"},
			want:    "de-DE",
		},
		{
			name:    "two locales",
			locales: []string{"en-US", "en"},
			want:    "en-US,en;q=0.9",
		},
		{
			name:    "quality ladder",
			locales: []string{"en-US", "en", "fr", "de"},
			want:    "en-US,en;q=0.9,fr;q=0.8,de;q=0.7",
		},
		{
			name:    "quality clamps at 0.1",
			locales: []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9", "l10"},
			want:    "l1,l2;q=0.9,l3;q=0.8,l4;q=0.7,l5;q=0.6,l6;q=0.5,l7;q=0.4,l8;q=0.3,l9;q=0.2,l10;q=0.1",
		},
		{
			name:    "list capped at ten",
			locales: []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9", "l10", "l11"},
			want:    "l1,l2;q=0.9,l3;q=0.8,l4;q=0.7,l5;q=0.6,l6;q=0.5,l7;q=0.4,l8;q=0.3,l9;q=0.2,l10;q=0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AcceptLanguage(tt.locales); got != tt.want {
				t.Errorf("AcceptLanguage(%v) = %q, want %q", tt.locales, got, tt.want)
			}
		})
	}
}

func TestAcceptLanguageRoundTrips(t *testing.T) {
	locales := []string{"en-GB", "en", "nl", "fr-CA"}
	emitted := AcceptLanguage(locales)

	var parsed []string
	for _, part := range strings.Split(emitted, ",") {
		if i := strings.Index(part, ";q="); i >= 0 {
			part = part[:i]
		}
		parsed = append(parsed, part)
	}
	if diff := cmp.Diff(locales, parsed); diff != "" {
		t.Errorf("locale list did not round-trip (-want +got):\n%s", diff)
	}
}
