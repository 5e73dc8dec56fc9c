// Package headers generates statistically realistic HTTP request header sets
// by jointly sampling an input-selector Bayesian network and a header-value
// network, then deriving, filtering, and ordering the result the way the
// sampled browser would emit it.
package headers

import "strings"

// BrowserSpec constrains one acceptable browser line. A zero MaxVersion means
// unbounded; HTTPVersion overrides the request-level preference for entries
// that carry one.
type BrowserSpec struct {
	Name        string
	MinVersion  int
	MaxVersion  int
	HTTPVersion string
}

// Options describes a single header-generation request. The zero value asks
// for any browser, OS, and device over HTTP/2 with an en-US locale.
type Options struct {
	Browsers         []BrowserSpec
	OperatingSystems []string
	Devices          []string
	Locales          []string
	HTTPVersion      string
	Strict           bool

	// UserAgents, when non-empty, restricts generation to selector values
	// that co-occur with at least one of the listed user-agent strings.
	UserAgents []string

	// RequestDependentHeaders are merged over the generated set last.
	RequestDependentHeaders map[string]string

	// RelaxationHook, when set, observes each relaxation step in the order
	// it is attempted, including steps skipped because the list holds at
	// most one entry.
	RelaxationHook func(list string)
}

// Constraint-list names, in relaxation order.
const (
	listLocales          = "locales"
	listDevices          = "devices"
	listOperatingSystems = "operatingSystems"
	listBrowsers         = "browsers"
)

var relaxationOrder = []string{listLocales, listDevices, listOperatingSystems, listBrowsers}

// withDefaults fills in the request-level defaults.
func withDefaults(opts Options) Options {
	if opts.HTTPVersion == "" {
		opts.HTTPVersion = "2"
	}
	return opts
}

// relaxable reports whether the named list still restricts anything worth
// resetting: a list of one entry is already as tight as its owner wants it.
func relaxable(opts Options, list string) bool {
	switch list {
	case listLocales:
		return len(opts.Locales) > 1
	case listDevices:
		return len(opts.Devices) > 1
	case listOperatingSystems:
		return len(opts.OperatingSystems) > 1
	case listBrowsers:
		return len(opts.Browsers) > 1
	}
	return false
}

// relax resets the named list to its default-supported set: en-US for
// locales, unconstrained for everything else.
func relax(opts Options, list string) Options {
	switch list {
	case listLocales:
		opts.Locales = []string{"en-US"}
	case listDevices:
		opts.Devices = nil
	case listOperatingSystems:
		opts.OperatingSystems = nil
	case listBrowsers:
		opts.Browsers = nil
	}
	return opts
}

// Header is one generated header. Order is significant: real browsers emit
// headers in a browser-specific order, so results are slices, not maps.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Lookup finds a header by case-insensitive name.
func Lookup(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
