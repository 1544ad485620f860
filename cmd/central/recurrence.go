package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/recurring"
)

type validateOutput struct {
	Valid      bool                    `json:"valid"`
	Config     *domain.RecurringConfig `json:"config,omitempty"`
	Violations []domain.FieldViolation `json:"violations,omitempty"`
}

type occurrencesOutput struct {
	StartDate   domain.Date         `json:"startDate"`
	Occurrences []domain.Occurrence `json:"occurrences"`
}

func newRecurrenceCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurrence",
		Short: "Validate and expand recurrence configurations",
	}
	cmd.AddCommand(
		newRecurrenceValidateCmd(opts),
		newRecurrenceOccurrencesCmd(opts),
	)
	return cmd
}

func newRecurrenceValidateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a recurrence configuration",
		Long: `Validate a recurrence configuration read from a file or stdin.

Every violation is reported. The exit status is 1 when the configuration is invalid.`,
		Example: `  echo '{"frequency":"weekly","interval":1,"daysOfWeek":[1,3]}' | central recurrence validate`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			raw, err := recurring.DecodeRaw(data)
			if err == nil {
				var cfg domain.RecurringConfig
				cfg, err = svc.ValidateRecurrence(cmd.Context(), raw)
				if err == nil {
					return opts.writeJSON(cmd.OutOrStdout(), validateOutput{Valid: true, Config: &cfg})
				}
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			if werr := opts.writeJSON(cmd.OutOrStdout(), validateOutput{Violations: verr.Violations}); werr != nil {
				return werr
			}
			return errReported
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "configuration file (JSON, or YAML when named *.yaml), - for stdin")
	return cmd
}

func newRecurrenceOccurrencesCmd(opts *rootOptions) *cobra.Command {
	var file, start, from, until string

	cmd := &cobra.Command{
		Use:     "occurrences",
		Short:   "Expand a recurrence configuration into dates",
		Example: `  central recurrence occurrences -f weekly.json --start 2025-06-01 --until 2025-08-31`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}

			startDate := svc.Today()
			if start != "" {
				if startDate, err = domain.ParseDate(start); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}
			fromDate, err := optionalDate("--from", from)
			if err != nil {
				return err
			}
			untilDate, err := optionalDate("--until", until)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			raw, err := recurring.DecodeRaw(data)
			if err != nil {
				return err
			}

			occ, err := svc.PreviewOccurrences(cmd.Context(), startDate, raw, fromDate, untilDate)
			if err != nil {
				return err
			}
			return opts.writeJSON(cmd.OutOrStdout(), occurrencesOutput{StartDate: startDate, Occurrences: occ})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "configuration file (JSON, or YAML when named *.yaml), - for stdin")
	cmd.Flags().StringVar(&start, "start", "", "series start date (default today)")
	cmd.Flags().StringVar(&from, "from", "", "first date of the window (default today)")
	cmd.Flags().StringVar(&until, "until", "", "last date of the window (default 90 days after --from)")
	return cmd
}

func optionalDate(flag, s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, fmt.Errorf("invalid %s: %w", flag, err)
	}
	return d, nil
}
