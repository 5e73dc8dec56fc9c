package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jihwankim/headerforge/pkg/config"
	"github.com/jihwankim/headerforge/pkg/fingerprint"
	"github.com/jihwankim/headerforge/pkg/headers"
	"github.com/jihwankim/headerforge/pkg/reporting"
	"github.com/spf13/cobra"
)

var headersCmd = &cobra.Command{
	Use:   "headers",
	Args:  cobra.NoArgs,
	Short: "Generate HTTP request header sets",
	Long:  `Samples the loaded models and prints one generated header set per line.`,
	RunE:  runHeaders,
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Args:  cobra.NoArgs,
	Short: "Generate a browser fingerprint with matching headers",
	Long:  `Samples the loaded models and prints a fingerprint together with the header set it is consistent with.`,
	RunE:  runFingerprint,
}

func init() {
	for _, cmd := range []*cobra.Command{headersCmd, fingerprintCmd} {
		cmd.Flags().StringArray("browser", nil, "acceptable browser family (repeatable)")
		cmd.Flags().StringArray("os", nil, "acceptable operating system (repeatable)")
		cmd.Flags().StringArray("device", nil, "acceptable device type (repeatable)")
		cmd.Flags().StringArray("locale", nil, "preferred locale, most preferred first (repeatable)")
		cmd.Flags().String("http", "", "preferred HTTP version (1 or 2)")
		cmd.Flags().Bool("strict", false, "fail instead of relaxing unsatisfiable constraints")
	}
	headersCmd.Flags().Int("count", 1, "number of header sets to generate")
	fingerprintCmd.Flags().Int("min-width", 0, "minimum screen width")
	fingerprintCmd.Flags().Int("max-width", 0, "maximum screen width")
	fingerprintCmd.Flags().Int("min-height", 0, "minimum screen height")
	fingerprintCmd.Flags().Int("max-height", 0, "maximum screen height")
}

// headerOptions builds the request options from config defaults and flags.
func headerOptions(cmd *cobra.Command, cfg *config.Config) headers.Options {
	browserNames, _ := cmd.Flags().GetStringArray("browser")
	if len(browserNames) == 0 {
		browserNames = cfg.Generator.Browsers
	}
	specs := make([]headers.BrowserSpec, 0, len(browserNames))
	for _, name := range browserNames {
		specs = append(specs, headers.BrowserSpec{Name: name})
	}

	oses, _ := cmd.Flags().GetStringArray("os")
	if len(oses) == 0 {
		oses = cfg.Generator.OperatingSystems
	}
	devices, _ := cmd.Flags().GetStringArray("device")
	if len(devices) == 0 {
		devices = cfg.Generator.Devices
	}
	locales, _ := cmd.Flags().GetStringArray("locale")
	if len(locales) == 0 {
		locales = cfg.Generator.Locales
	}
	httpVersion, _ := cmd.Flags().GetString("http")
	if httpVersion == "" {
		httpVersion = cfg.Generator.HTTPVersion
	}
	strict, _ := cmd.Flags().GetBool("strict")

	return headers.Options{
		Browsers:         specs,
		OperatingSystems: oses,
		Devices:          devices,
		Locales:          locales,
		HTTPVersion:      httpVersion,
		Strict:           strict || cfg.Generator.Strict,
	}
}

func newLogger(cfg *config.Config) *reporting.Logger {
	level := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		level = reporting.LogLevelDebug
	}
	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stderr,
	})
}

func runHeaders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	generator, err := headers.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	count, _ := cmd.Flags().GetInt("count")
	opts := headerOptions(cmd, cfg)

	enc := json.NewEncoder(os.Stdout)
	for i := 0; i < count; i++ {
		generated, err := generator.Generate(opts)
		if err != nil {
			return err
		}
		if err := enc.Encode(generated); err != nil {
			return err
		}
	}
	return nil
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	generator, err := fingerprint.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	opts := fingerprint.Options{Headers: headerOptions(cmd, cfg)}
	opts.MinWidth, _ = cmd.Flags().GetInt("min-width")
	opts.MaxWidth, _ = cmd.Flags().GetInt("max-width")
	opts.MinHeight, _ = cmd.Flags().GetInt("min-height")
	opts.MaxHeight, _ = cmd.Flags().GetInt("max-height")
	opts.Strict = opts.Headers.Strict

	fp, generated, err := generator.Generate(opts)
	if err != nil {
		return err
	}

	out := struct {
		Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
		Headers     []headers.Header        `json:"headers"`
	}{Fingerprint: fp, Headers: generated}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
