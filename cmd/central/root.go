package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/clock"
	"github.com/rezkam/central/internal/domain"
)

// errReported signals a failure whose details were already written as JSON.
var errReported = errors.New("reported")

type rootOptions struct {
	today  string
	tz     string
	pretty bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "central",
		Short:         "Date parsing, recurrence rules and due-date buckets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.today, "today", "", "evaluate relative to this date (YYYY-MM-DD) instead of the current date")
	cmd.PersistentFlags().StringVar(&opts.tz, "tz", "", "IANA time zone used to determine today (default UTC)")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	cmd.AddCommand(
		newParseCmd(opts),
		newSuggestCmd(opts),
		newRecurrenceCmd(opts),
		newBucketsCmd(opts),
	)
	return cmd
}

// service builds a planner service for stateless commands.
func (o *rootOptions) service() (*planner.Service, error) {
	loc, err := clock.LoadLocation(o.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz: %w", err)
	}

	var clk clock.Clock = clock.System{}
	if o.today != "" {
		d, err := domain.ParseDate(o.today)
		if err != nil {
			return nil, fmt.Errorf("invalid --today: %w", err)
		}
		// Noon in the target zone stays on the same date whatever the offset.
		clk = clock.NewFixed(d.In(loc).Add(12 * time.Hour))
	}

	return planner.NewService(nil, clk, planner.Config{Location: loc})
}

func (o *rootOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// readInput reads a file, or stdin when path is empty or "-", and returns
// JSON. Files named *.yaml or *.yml are converted from YAML.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", path, err)
		}
	}
	return data, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(jsonCompatible(doc))
}

// jsonCompatible rewrites decoded YAML so encoding/json accepts it:
// non-string map keys become strings and timestamps become ISO dates.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = jsonCompatible(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = jsonCompatible(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = jsonCompatible(e)
		}
		return t
	case time.Time:
		return domain.DateOf(t).String()
	default:
		return v
	}
}
