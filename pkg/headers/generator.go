package headers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jihwankim/headerforge/pkg/bayesian"
	"github.com/jihwankim/headerforge/pkg/config"
	"github.com/jihwankim/headerforge/pkg/monitoring"
	"github.com/jihwankim/headerforge/pkg/reporting"
)

// Selector node names shared between the input and value networks.
const (
	nodeBrowserHTTP     = "*BROWSER_HTTP"
	nodeBrowser         = "*BROWSER"
	nodeOperatingSystem = "*OPERATING_SYSTEM"
	nodeDevice          = "*DEVICE"
)

// User-agent node names in the value network, one per HTTP version casing.
const (
	uaNodeHTTP1 = "User-Agent"
	uaNodeHTTP2 = "user-agent"
)

// stubUserAgent is the minimal fallback emitted when no relaxation step
// satisfies a non-strict request.
const stubUserAgent = "Mozilla/5.0"

// Generator produces realistic header sets. A Generator is immutable after
// construction and safe for concurrent use; per-request state lives in the
// sampling calls.
type Generator struct {
	input       *bayesian.Network
	values      *bayesian.Network
	knownList   []string
	headerOrder map[string][]string
	logger      *reporting.Logger
	metrics     *monitoring.Metrics
}

// GeneratorConfig wires already-loaded networks and data tables into a
// Generator. Logger and Metrics are optional.
type GeneratorConfig struct {
	InputNetwork *bayesian.Network
	ValueNetwork *bayesian.Network
	// UniqueBrowsers lists every browser line the models know, in the
	// shape "name/dottedVersion|httpVersion".
	UniqueBrowsers []string
	// HeaderOrder maps a browser family to its header emission order.
	HeaderOrder map[string][]string
	Logger      *reporting.Logger
	Metrics     *monitoring.Metrics
}

// New creates a Generator from pre-loaded models.
func New(cfg GeneratorConfig) (*Generator, error) {
	if cfg.InputNetwork == nil || cfg.ValueNetwork == nil {
		return nil, fmt.Errorf("both the input and value networks are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = reporting.Nop()
	}
	return &Generator{
		input:       cfg.InputNetwork,
		values:      cfg.ValueNetwork,
		knownList:   cfg.UniqueBrowsers,
		headerOrder: cfg.HeaderOrder,
		logger:      logger,
		metrics:     cfg.Metrics,
	}, nil
}

// NewFromConfig loads every model and data file named in cfg and builds a
// Generator from them.
func NewFromConfig(cfg *config.Config, logger *reporting.Logger, metrics *monitoring.Metrics) (*Generator, error) {
	input, err := bayesian.Load(cfg.Models.InputNetwork)
	if err != nil {
		return nil, err
	}
	values, err := bayesian.Load(cfg.Models.HeaderNetwork)
	if err != nil {
		return nil, err
	}
	known, err := LoadBrowserList(cfg.Models.BrowserList)
	if err != nil {
		return nil, err
	}
	order, err := LoadHeaderOrder(cfg.Models.HeaderOrder)
	if err != nil {
		return nil, err
	}
	return New(GeneratorConfig{
		InputNetwork:   input,
		ValueNetwork:   values,
		UniqueBrowsers: known,
		HeaderOrder:    order,
		Logger:         logger,
		Metrics:        metrics,
	})
}

// Generate runs the full header pipeline for one request: constrained
// sampling of the input network, forward sampling of the value network,
// derived fields, filtering, ordering, and casing. Unsatisfiable requests
// walk the relaxation ladder; a strict request surfaces
// ErrUnsatisfiableConstraints instead of degrading.
func (g *Generator) Generate(opts Options) ([]Header, error) {
	opts = withDefaults(opts)

	headers, err := g.generateOnce(opts)
	if err == nil {
		g.metrics.HeaderOutcome(monitoring.OutcomeOK)
		return headers, nil
	}
	if !errors.Is(err, ErrUnsatisfiableConstraints) {
		return nil, err
	}

	// An HTTP/1 request gets one shot at the HTTP/2 slice of the models
	// before any constraint list is touched.
	if opts.HTTPVersion == "1" {
		g.logger.Info("retrying over HTTP/2", "reason", "no HTTP/1 assignment")
		retry := opts
		retry.HTTPVersion = "2"
		return g.Generate(retry)
	}

	for _, list := range relaxationOrder {
		if opts.RelaxationHook != nil {
			opts.RelaxationHook(list)
		}
		if !relaxable(opts, list) {
			g.logger.Debug("relaxation step skipped", "list", list)
			continue
		}
		g.logger.Info("relaxing constraints", "list", list)
		g.metrics.Relaxation(list)
		opts = relax(opts, list)

		headers, err = g.generateOnce(opts)
		if err == nil {
			g.metrics.HeaderOutcome(monitoring.OutcomeOK)
			return headers, nil
		}
		if !errors.Is(err, ErrUnsatisfiableConstraints) {
			return nil, err
		}
	}

	if opts.Strict {
		g.metrics.HeaderOutcome(monitoring.OutcomeUnsatisfiable)
		return nil, err
	}
	g.logger.Warn("all relaxation steps exhausted, emitting stub headers")
	g.metrics.HeaderOutcome(monitoring.OutcomeStub)
	return []Header{{Name: "User-Agent", Value: stubUserAgent}}, nil
}

// generateOnce runs a single pass of the pipeline without relaxation.
func (g *Generator) generateOnce(opts Options) ([]Header, error) {
	httpVersion := opts.HTTPVersion

	browserHTTP := expandBrowserSpecs(g.knownList, opts.Browsers, httpVersion)
	if len(browserHTTP) == 0 {
		return nil, fmt.Errorf("%w: no known browser matches the request", ErrUnsatisfiableConstraints)
	}

	constraints := map[string][]string{nodeBrowserHTTP: browserHTTP}
	if len(opts.OperatingSystems) > 0 {
		constraints[nodeOperatingSystem] = opts.OperatingSystems
	}
	if len(opts.Devices) > 0 {
		constraints[nodeDevice] = opts.Devices
	}

	if len(opts.UserAgents) > 0 {
		filtered, ok := g.filterByUserAgents(constraints, opts.UserAgents)
		if !ok {
			return nil, fmt.Errorf("%w: no selector co-occurs with the user-agent whitelist", ErrUnsatisfiableConstraints)
		}
		constraints = filtered
	}

	inputSample, ok := g.input.SampleConsistent(constraints)
	if !ok {
		return nil, fmt.Errorf("%w: the input network admits no assignment", ErrUnsatisfiableConstraints)
	}

	valueSample := g.values.Sample(inputSample)

	headers := newHeaderMap()
	for _, node := range g.values.Nodes() {
		if value, bound := valueSample[node.Name]; bound {
			headers.set(node.Name, value)
		}
	}

	browser, _ := parseBrowserString(inputSample[nodeBrowserHTTP])

	acceptLanguageKey := "Accept-Language"
	if httpVersion == "2" {
		acceptLanguageKey = "accept-language"
	}
	headers.set(acceptLanguageKey, AcceptLanguage(opts.Locales))

	if secFetchEligible(browser) {
		block := secFetchHTTP1
		if httpVersion == "2" {
			block = secFetchHTTP2
		}
		for _, h := range block {
			headers.set(h.Name, h.Value)
		}
	}

	for _, pair := range headers.pairs() {
		switch {
		case strings.HasPrefix(pair.Name, "*"),
			pair.Value == bayesian.MissingValue,
			pair.Value == "",
			strings.EqualFold(pair.Name, "connection") && pair.Value == "close":
			headers.delete(pair.Name)
		}
	}

	overlayNames := make([]string, 0, len(opts.RequestDependentHeaders))
	for name := range opts.RequestDependentHeaders {
		overlayNames = append(overlayNames, name)
	}
	sort.Strings(overlayNames)
	for _, name := range overlayNames {
		headers.set(name, opts.RequestDependentHeaders[name])
	}

	_, userAgent, found := headers.lookupFold("user-agent")
	if !found {
		return nil, ErrMissingUserAgent
	}

	ordered := orderHeaders(headers, g.headerOrder[browserFromUserAgent(userAgent)])
	if httpVersion == "2" {
		for i := range ordered {
			ordered[i].Name = Pascalize(ordered[i].Name)
		}
	}
	return ordered, nil
}

// filterByUserAgents narrows the input constraints to selector values that
// co-occur with at least one whitelisted user-agent string in either the
// HTTP/1 or the HTTP/2 casing of the value network. The second return is
// false when nothing survives.
func (g *Generator) filterByUserAgents(constraints map[string][]string, userAgents []string) (map[string][]string, bool) {
	http1, err := g.values.PossibleValues(map[string][]string{uaNodeHTTP1: userAgents})
	if err != nil {
		http1 = nil
	}
	http2, err := g.values.PossibleValues(map[string][]string{uaNodeHTTP2: userAgents})
	if err != nil {
		http2 = nil
	}
	if http1 == nil && http2 == nil {
		return nil, false
	}

	// admits reports whether a propagated domain tolerates value for node:
	// an unbound node constrains nothing.
	admits := func(domain map[string][]string, node, value string) bool {
		if domain == nil {
			return false
		}
		allowed, bound := domain[node]
		if !bound {
			return true
		}
		for _, v := range allowed {
			if v == value {
				return true
			}
		}
		return false
	}

	filtered := make(map[string][]string, len(constraints))
	for node, values := range constraints {
		var kept []string
		for _, value := range values {
			switch node {
			case nodeBrowserHTTP:
				b, ok := parseBrowserString(value)
				if !ok {
					continue
				}
				domain := http2
				if b.HTTPVersion == "1" {
					domain = http1
				}
				if admits(domain, nodeBrowser, b.Name) {
					kept = append(kept, value)
				}
			default:
				if admits(http1, node, value) || admits(http2, node, value) {
					kept = append(kept, value)
				}
			}
		}
		if len(kept) == 0 {
			return nil, false
		}
		filtered[node] = kept
	}
	return filtered, true
}

// orderHeaders applies the per-browser emission order, appending headers the
// order list does not mention in their generation order.
func orderHeaders(h *headerMap, order []string) []Header {
	out := make([]Header, 0, len(h.order))
	used := make(map[string]struct{}, len(h.order))
	for _, name := range order {
		stored, value, ok := h.lookupFold(name)
		if !ok {
			continue
		}
		if _, dup := used[strings.ToLower(stored)]; dup {
			continue
		}
		used[strings.ToLower(stored)] = struct{}{}
		out = append(out, Header{Name: stored, Value: value})
	}
	for _, pair := range h.pairs() {
		if _, done := used[strings.ToLower(pair.Name)]; done {
			continue
		}
		out = append(out, pair)
	}
	return out
}
