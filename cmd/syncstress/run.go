package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kolkov/threadsync/internal/stress"
)

// Output formats of the report.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// profile is the YAML file accepted by --config.
type profile struct {
	stress.Config `yaml:",inline"`

	// Scenarios selects what "all" runs; empty means every scenario.
	Scenarios []string `yaml:"scenarios"`
}

// report is what a run prints.
type report struct {
	Results []stress.Result     `json:"results" yaml:"results"`
	Process *stress.ProcessStats `json:"process,omitempty" yaml:"process,omitempty"`
}

// NewScenarioCmd returns the command running the named scenario.
func NewScenarioCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Run the %s scenario", name),
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runScenarios(cc, func(profile) []string { return []string{name} })
		},
	}
	addScenarioFlags(cmd.Flags())
	return cmd
}

// NewAllCmd returns the command running every scenario, or those listed in
// the profile.
func NewAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every scenario",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runScenarios(cc, func(p profile) []string {
				if len(p.Scenarios) > 0 {
					return p.Scenarios
				}
				return stress.Names()
			})
		},
	}
	addScenarioFlags(cmd.Flags())
	return cmd
}

func addScenarioFlags(flags *pflag.FlagSet) {
	d := stress.DefaultConfig()
	flags.Int("workers", d.Workers, "Threads in the condition, barrier and thread scenarios")
	flags.Int("iterations", d.Iterations, "Operations per worker")
	flags.Int("readers", d.Readers, "Reader threads in the rwlock scenario")
	flags.Int("writers", d.Writers, "Writer threads in the rwlock scenario")
	flags.Int("phases", d.Phases, "Barrier cycles")
	flags.Bool("audit", false, "Check happens-before edges with the hb auditor")
	flags.Duration("wakeup_timeout", d.WakeupTimeout, "Longest single wait before it counts as a lost wakeup")
	flags.StringP("output", "o", outputText, "Report format (text, json, yaml)")
}

func runScenarios(cc *cobra.Command, selectNames func(profile) []string) error {
	p, err := loadProfile(cc.Flags())
	if err != nil {
		return err
	}
	if err := applyFlags(cc.Flags(), &p.Config); err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}
	output, err := cc.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	logger := slog.Default().With("tag", "threadsync")
	results, runErr := stress.Run(selectNames(p), p.Config, logger)

	rep := report{Results: results}
	if stats, err := stress.CollectProcessStats(); err != nil {
		logger.Warn("process stats unavailable", "err", err)
	} else {
		rep.Process = &stats
	}

	if err := writeReport(cc.OutOrStdout(), output, rep); err != nil {
		return err
	}
	return runErr
}

// loadProfile reads the --config file, if any.
func loadProfile(flags *pflag.FlagSet) (profile, error) {
	var p profile

	path, err := flags.GetString("config")
	if err != nil || path == "" {
		return p, err
	}

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("failed reading profile: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return p, fmt.Errorf("failed parsing profile %s: %w", path, err)
	}
	return p, nil
}

// applyFlags copies every explicitly set flag over the profile values, and
// fills fields the profile left unset from the flag defaults.
func applyFlags(flags *pflag.FlagSet, cfg *stress.Config) error {
	ints := map[string]*int{
		"workers":    &cfg.Workers,
		"iterations": &cfg.Iterations,
		"readers":    &cfg.Readers,
		"writers":    &cfg.Writers,
		"phases":     &cfg.Phases,
	}
	for name, dst := range ints {
		if !flags.Changed(name) && *dst != 0 {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("audit") {
		v, err := flags.GetBool("audit")
		if err != nil {
			return err
		}
		cfg.Audit = v
	}

	if flags.Changed("wakeup_timeout") || cfg.WakeupTimeout == 0 {
		v, err := flags.GetDuration("wakeup_timeout")
		if err != nil {
			return err
		}
		cfg.WakeupTimeout = v
	}
	return nil
}

func writeReport(w io.Writer, format string, rep report) error {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case outputText, "":
		return writeText(w, rep)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, rep report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tOPS\tELAPSED\tOPS/SEC\tCOUNTERS\tRUN ID")
	for _, r := range rep.Results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.0f\t%s\t%s\n",
			r.Scenario, r.Ops, r.Elapsed.Round(time.Microsecond), r.Throughput(), formatCounters(r.Counters), r.RunID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p := rep.Process; p != nil {
		fmt.Fprintf(w, "\nprocess %d: %d threads, %d goroutines, cpu user %s system %s, rss %d KiB, %d logical cpus\n",
			p.PID, p.Threads, p.Goroutines, p.UserCPU, p.SystemCPU, p.RSS/1024, p.LogicalCPU)
	}
	return nil
}

func formatCounters(c map[string]int64) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, c[k]))
	}
	return strings.Join(parts, " ")
}
