package headers

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jihwankim/headerforge/pkg/bayesian"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
const firefoxUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0"

func mustNetwork(t *testing.T, doc string, seed int64) *bayesian.Network {
	t.Helper()
	bn, err := bayesian.LoadBytes([]byte(doc))
	if err != nil {
		t.Fatalf("failed to load test network: %v", err)
	}
	for i, node := range bn.Nodes() {
		node.SetRand(rand.New(rand.NewSource(seed + int64(i))))
	}
	return bn
}

// singleBrowserInput pins the input network to one chrome line over HTTP/2.
const singleBrowserInput = `{
	"nodes": [
		{
			"name": "*BROWSER_HTTP",
			"parentNames": [],
			"possibleValues": ["chrome/108.0.0.0|2"],
			"conditionalProbabilities": {"chrome/108.0.0.0|2": 1.0}
		}
	]
}`

const singleUAValues = `{
	"nodes": [
		{
			"name": "User-Agent",
			"parentNames": [],
			"possibleValues": ["` + chromeUA + `"],
			"conditionalProbabilities": {"` + chromeUA + `": 1.0}
		}
	]
}`

func newSingleBrowserGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New(GeneratorConfig{
		InputNetwork:   mustNetwork(t, singleBrowserInput, 1),
		ValueNetwork:   mustNetwork(t, singleUAValues, 2),
		UniqueBrowsers: []string{"chrome/108.0.0.0|2"},
		HeaderOrder: map[string][]string{
			"chrome": {"User-Agent", "Accept-Language"},
		},
	})
	if err != nil {
		t.Fatalf("failed to build generator: %v", err)
	}
	return g
}

func TestGenerateHappyPath(t *testing.T) {
	g := newSingleBrowserGenerator(t)

	headers, err := g.Generate(Options{
		Browsers:    []BrowserSpec{{Name: "chrome"}},
		HTTPVersion: "2",
		Locales:     []string{"en-US", "en"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	assertHeader(t, headers, "User-Agent", chromeUA)
	assertHeader(t, headers, "Accept-Language", "en-US,en;q=0.9")
	assertHeader(t, headers, "Sec-Fetch-Dest", "document")
	assertHeader(t, headers, "Sec-Fetch-Mode", "navigate")
	assertHeader(t, headers, "Sec-Fetch-Site", "none")
	assertHeader(t, headers, "Sec-Fetch-User", "?1")
}

func TestGenerateStrictUnsatisfiable(t *testing.T) {
	g := newSingleBrowserGenerator(t)

	_, err := g.Generate(Options{
		Browsers:    []BrowserSpec{{Name: "firefox"}},
		HTTPVersion: "2",
		Strict:      true,
	})
	if !errors.Is(err, ErrUnsatisfiableConstraints) {
		t.Errorf("expected ErrUnsatisfiableConstraints, got %v", err)
	}
}

func TestGenerateRelaxationLadder(t *testing.T) {
	g := newSingleBrowserGenerator(t)

	var attempts []string
	headers, err := g.Generate(Options{
		Browsers:    []BrowserSpec{{Name: "firefox"}},
		HTTPVersion: "2",
		Locales:     []string{"en-US", "fr", "de"},
		Strict:      false,
		RelaxationHook: func(list string) {
			attempts = append(attempts, list)
		},
	})
	if err != nil {
		t.Fatalf("non-strict generation must not fail: %v", err)
	}

	want := []string{"locales", "devices", "operatingSystems", "browsers"}
	if diff := cmp.Diff(want, attempts); diff != "" {
		t.Errorf("relaxation attempt order mismatch (-want +got):\n%s", diff)
	}

	// Only the firefox pin remains unsatisfiable, so the pipeline must
	// degrade to the stub.
	wantHeaders := []Header{{Name: "User-Agent", Value: stubUserAgent}}
	if diff := cmp.Diff(wantHeaders, headers); diff != "" {
		t.Errorf("stub mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateRelaxationRecovers(t *testing.T) {
	// The model only knows windows for chrome; requesting two other OSes
	// must fail, relax operatingSystems, and then succeed.
	input := `{
		"nodes": [
			{
				"name": "*BROWSER_HTTP",
				"parentNames": [],
				"possibleValues": ["chrome/108.0.0.0|2"],
				"conditionalProbabilities": {"chrome/108.0.0.0|2": 1.0}
			},
			{
				"name": "*OPERATING_SYSTEM",
				"parentNames": ["*BROWSER_HTTP"],
				"possibleValues": ["windows"],
				"conditionalProbabilities": {"skip": {"windows": 1.0}}
			}
		]
	}`
	g, err := New(GeneratorConfig{
		InputNetwork:   mustNetwork(t, input, 3),
		ValueNetwork:   mustNetwork(t, singleUAValues, 4),
		UniqueBrowsers: []string{"chrome/108.0.0.0|2"},
	})
	if err != nil {
		t.Fatalf("failed to build generator: %v", err)
	}

	var attempts []string
	headers, err := g.Generate(Options{
		Browsers:         []BrowserSpec{{Name: "chrome"}},
		OperatingSystems: []string{"linux", "macos"},
		HTTPVersion:      "2",
		RelaxationHook: func(list string) {
			attempts = append(attempts, list)
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []string{"locales", "devices", "operatingSystems"}
	if diff := cmp.Diff(want, attempts); diff != "" {
		t.Errorf("relaxation attempt order mismatch (-want +got):\n%s", diff)
	}
	assertHeader(t, headers, "User-Agent", chromeUA)
}

func TestGenerateHTTP1FallsBackToHTTP2(t *testing.T) {
	// No HTTP/1 line exists, so an HTTP/1 request must retry the whole
	// pipeline over HTTP/2 and emit pascalised keys.
	g := newSingleBrowserGenerator(t)

	headers, err := g.Generate(Options{
		Browsers:    []BrowserSpec{{Name: "chrome"}},
		HTTPVersion: "1",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertHeader(t, headers, "User-Agent", chromeUA)
	assertHeader(t, headers, "Accept-Language", "en-US,en;q=0.9")
	assertHeader(t, headers, "Sec-Fetch-Dest", "document")
}

// layeredValues derives *BROWSER from the pinned *BROWSER_HTTP line and the
// user agent from *BROWSER, mirroring the persisted header models.
const layeredValues = `{
	"nodes": [
		{
			"name": "*BROWSER_HTTP",
			"parentNames": [],
			"possibleValues": ["chrome/108.0.0.0|2", "firefox/115.0|2"],
			"conditionalProbabilities": {"chrome/108.0.0.0|2": 0.5, "firefox/115.0|2": 0.5}
		},
		{
			"name": "*BROWSER",
			"parentNames": ["*BROWSER_HTTP"],
			"possibleValues": ["chrome", "firefox"],
			"conditionalProbabilities": {
				"deeper": {
					"chrome/108.0.0.0|2": {"chrome": 1.0},
					"firefox/115.0|2": {"firefox": 1.0}
				}
			}
		},
		{
			"name": "user-agent",
			"parentNames": ["*BROWSER"],
			"possibleValues": ["` + chromeUA + `", "` + firefoxUA + `"],
			"conditionalProbabilities": {
				"deeper": {
					"chrome": {"` + chromeUA + `": 1.0},
					"firefox": {"` + firefoxUA + `": 1.0}
				}
			}
		}
	]
}`

const twoBrowserInput = `{
	"nodes": [
		{
			"name": "*BROWSER_HTTP",
			"parentNames": [],
			"possibleValues": ["chrome/108.0.0.0|2", "firefox/115.0|2"],
			"conditionalProbabilities": {"chrome/108.0.0.0|2": 0.9, "firefox/115.0|2": 0.1}
		}
	]
}`

func TestGenerateUserAgentWhitelist(t *testing.T) {
	g, err := New(GeneratorConfig{
		InputNetwork:   mustNetwork(t, twoBrowserInput, 5),
		ValueNetwork:   mustNetwork(t, layeredValues, 6),
		UniqueBrowsers: []string{"chrome/108.0.0.0|2", "firefox/115.0|2"},
	})
	if err != nil {
		t.Fatalf("failed to build generator: %v", err)
	}

	// Whitelisting the firefox user agent must exclude the chrome line
	// even though chrome carries nine tenths of the input mass.
	for i := 0; i < 50; i++ {
		headers, err := g.Generate(Options{
			HTTPVersion: "2",
			UserAgents:  []string{firefoxUA},
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		assertHeader(t, headers, "User-Agent", firefoxUA)
	}
}

func TestGenerateFiltersScaffolding(t *testing.T) {
	values := `{
		"nodes": [
			{
				"name": "user-agent",
				"parentNames": [],
				"possibleValues": ["` + chromeUA + `"],
				"conditionalProbabilities": {"` + chromeUA + `": 1.0}
			},
			{
				"name": "*INTERNAL",
				"parentNames": [],
				"possibleValues": ["scaffolding"],
				"conditionalProbabilities": {"scaffolding": 1.0}
			},
			{
				"name": "connection",
				"parentNames": [],
				"possibleValues": ["close"],
				"conditionalProbabilities": {"close": 1.0}
			},
			{
				"name": "x-missing",
				"parentNames": [],
				"possibleValues": ["*MISSING_VALUE*"],
				"conditionalProbabilities": {"*MISSING_VALUE*": 1.0}
			},
			{
				"name": "x-empty",
				"parentNames": [],
				"possibleValues": [""],
				"conditionalProbabilities": {"": 1.0}
			}
		]
	}`
	g, err := New(GeneratorConfig{
		InputNetwork:   mustNetwork(t, singleBrowserInput, 7),
		ValueNetwork:   mustNetwork(t, values, 8),
		UniqueBrowsers: []string{"chrome/108.0.0.0|2"},
	})
	if err != nil {
		t.Fatalf("failed to build generator: %v", err)
	}

	headers, err := g.Generate(Options{HTTPVersion: "2"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, name := range []string{"*INTERNAL", "Connection", "X-Missing", "X-Empty"} {
		if value, found := Lookup(headers, name); found {
			t.Errorf("header %s = %q should have been filtered out", name, value)
		}
	}
	assertHeader(t, headers, "User-Agent", chromeUA)
}

func TestGenerateRequestDependentOverlay(t *testing.T) {
	g := newSingleBrowserGenerator(t)

	headers, err := g.Generate(Options{
		HTTPVersion: "2",
		RequestDependentHeaders: map[string]string{
			"referer":       "https://example.com/",
			"cache-control": "no-cache",
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertHeader(t, headers, "Referer", "https://example.com/")
	assertHeader(t, headers, "Cache-Control", "no-cache")
}

func TestGenerateHeaderOrdering(t *testing.T) {
	g := newSingleBrowserGenerator(t)

	headers, err := g.Generate(Options{HTTPVersion: "2", Locales: []string{"en-US"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// The chrome order pins User-Agent before Accept-Language; the
	// sec-fetch block is unlisted and must follow in generation order.
	var names []string
	for _, h := range headers {
		names = append(names, h.Name)
	}
	want := []string{
		"User-Agent", "Accept-Language",
		"Sec-Fetch-Dest", "Sec-Fetch-Mode", "Sec-Fetch-Site", "Sec-Fetch-User",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("header order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMissingUserAgent(t *testing.T) {
	values := `{
		"nodes": [
			{
				"name": "x-test",
				"parentNames": [],
				"possibleValues": ["1"],
				"conditionalProbabilities": {"1": 1.0}
			}
		]
	}`
	g, err := New(GeneratorConfig{
		InputNetwork:   mustNetwork(t, singleBrowserInput, 9),
		ValueNetwork:   mustNetwork(t, values, 10),
		UniqueBrowsers: []string{"chrome/108.0.0.0|2"},
	})
	if err != nil {
		t.Fatalf("failed to build generator: %v", err)
	}

	if _, err := g.Generate(Options{HTTPVersion: "2"}); !errors.Is(err, ErrMissingUserAgent) {
		t.Errorf("expected ErrMissingUserAgent, got %v", err)
	}
}

func assertHeader(t *testing.T, headers []Header, name, want string) {
	t.Helper()
	got, found := Lookup(headers, name)
	if !found {
		t.Errorf("header %s missing from %v", name, headers)
		return
	}
	if got != want {
		t.Errorf("header %s = %q, want %q", name, got, want)
	}
}
