// Package fingerprint generates full browser fingerprints consistent with a
// generated header set, by pinning the fingerprint network to the sampled
// user agent and post-processing the drawn attributes.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jihwankim/headerforge/pkg/bayesian"
	"github.com/jihwankim/headerforge/pkg/config"
	"github.com/jihwankim/headerforge/pkg/headers"
	"github.com/jihwankim/headerforge/pkg/monitoring"
	"github.com/jihwankim/headerforge/pkg/reporting"
)

// Fingerprint network node names.
const (
	nodeUserAgent = "userAgent"
	nodeScreen    = "screen"
)

// Fingerprint maps attribute names to sampled values. Stringified payloads
// are already unwrapped into their JSON shapes.
type Fingerprint map[string]interface{}

// Options describes one fingerprint request. The embedded header options
// drive the header subroutine; the screen bounds, when non-zero, restrict
// the sampled screen configuration.
type Options struct {
	Headers headers.Options

	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int

	Strict bool
}

// Generator composes a header generator with the fingerprint network.
// Immutable after construction and safe for concurrent use.
type Generator struct {
	headers *headers.Generator
	network *bayesian.Network
	logger  *reporting.Logger
	metrics *monitoring.Metrics
}

// GeneratorConfig wires a header generator and a loaded fingerprint network
// together. Logger and Metrics are optional.
type GeneratorConfig struct {
	Headers *headers.Generator
	Network *bayesian.Network
	Logger  *reporting.Logger
	Metrics *monitoring.Metrics
}

// New creates a fingerprint Generator.
func New(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Headers == nil || cfg.Network == nil {
		return nil, fmt.Errorf("both the header generator and the fingerprint network are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = reporting.Nop()
	}
	return &Generator{
		headers: cfg.Headers,
		network: cfg.Network,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// NewFromConfig loads the fingerprint network named in cfg on top of a
// config-built header generator.
func NewFromConfig(cfg *config.Config, logger *reporting.Logger, metrics *monitoring.Metrics) (*Generator, error) {
	hg, err := headers.NewFromConfig(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	network, err := bayesian.Load(cfg.Models.FingerprintNetwork)
	if err != nil {
		return nil, err
	}
	return New(GeneratorConfig{Headers: hg, Network: network, Logger: logger, Metrics: metrics})
}

// Generate produces a fingerprint and the header set it is consistent with.
// The headers come first; the fingerprint network is then pinned to the
// generated user agent (plus the screen whitelist, when bounds are given)
// and sampled consistently. A strict request fails instead of loosening the
// screen constraint.
func (g *Generator) Generate(opts Options) (Fingerprint, []headers.Header, error) {
	screenWhitelist, err := g.screenWhitelist(opts)
	if err != nil {
		g.metrics.FingerprintOutcome(monitoring.OutcomeUnsatisfiable)
		return nil, nil, err
	}

	hdrs, err := g.headers.Generate(opts.Headers)
	if err != nil {
		g.metrics.FingerprintOutcome(monitoring.OutcomeUnsatisfiable)
		return nil, nil, err
	}
	userAgent, found := headers.Lookup(hdrs, "user-agent")
	if !found {
		return nil, nil, headers.ErrMissingUserAgent
	}

	constraints := map[string][]string{nodeUserAgent: {userAgent}}
	if screenWhitelist != nil {
		constraints[nodeScreen] = screenWhitelist
	}

	sample, ok := g.network.SampleConsistent(constraints)
	if !ok {
		if opts.Strict {
			g.metrics.FingerprintOutcome(monitoring.OutcomeUnsatisfiable)
			return nil, nil, fmt.Errorf("%w: no fingerprint matches the generated user agent under the screen bounds", headers.ErrUnsatisfiableConstraints)
		}
		g.logger.Info("dropping screen constraint", "reason", "no consistent fingerprint")
		sample, ok = g.network.SampleConsistent(map[string][]string{nodeUserAgent: {userAgent}})
		if !ok {
			// The user agent itself is foreign to the fingerprint model;
			// forward-sample around the pin.
			sample = g.network.Sample(map[string]string{nodeUserAgent: userAgent})
		}
	}

	fp := make(Fingerprint, len(sample))
	for name, value := range sample {
		if value == bayesian.MissingValue {
			continue
		}
		fp[name] = unwrapValue(value)
	}
	deriveMissing(fp)

	g.metrics.FingerprintOutcome(monitoring.OutcomeOK)
	return fp, hdrs, nil
}

// screenWhitelist selects every stored screen configuration whose parsed
// dimensions satisfy the requested bounds. A request without bounds imposes
// nothing; bounds that exclude every configuration fail in strict mode and
// are ignored otherwise.
func (g *Generator) screenWhitelist(opts Options) ([]string, error) {
	if opts.MinWidth == 0 && opts.MaxWidth == 0 && opts.MinHeight == 0 && opts.MaxHeight == 0 {
		return nil, nil
	}
	node, ok := g.network.Node(nodeScreen)
	if !ok {
		return nil, nil
	}

	var whitelist []string
	for _, candidate := range node.PossibleValues {
		width, height, ok := parseScreenDimensions(candidate)
		if !ok {
			continue
		}
		if opts.MinWidth > 0 && width < opts.MinWidth {
			continue
		}
		if opts.MaxWidth > 0 && width > opts.MaxWidth {
			continue
		}
		if opts.MinHeight > 0 && height < opts.MinHeight {
			continue
		}
		if opts.MaxHeight > 0 && height > opts.MaxHeight {
			continue
		}
		whitelist = append(whitelist, candidate)
	}

	if len(whitelist) == 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: no stored screen configuration fits the requested bounds", headers.ErrUnsatisfiableConstraints)
		}
		g.logger.Warn("no stored screen configuration fits the requested bounds, ignoring them")
		return nil, nil
	}
	return whitelist, nil
}

// parseScreenDimensions reads width and height out of a stringified screen
// configuration.
func parseScreenDimensions(value string) (width, height int, ok bool) {
	payload, found := strings.CutPrefix(value, bayesian.StringifiedPrefix)
	if !found {
		return 0, 0, false
	}
	var screen struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal([]byte(payload), &screen); err != nil {
		return 0, 0, false
	}
	return int(screen.Width), int(screen.Height), true
}

// unwrapValue decodes a *STRINGIFIED* payload into its JSON shape, passing
// every other value through untouched.
func unwrapValue(value string) interface{} {
	payload, found := strings.CutPrefix(value, bayesian.StringifiedPrefix)
	if !found {
		return value
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return value
	}
	return parsed
}
