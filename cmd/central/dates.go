package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezkam/central/internal/domain"
)

type parseOutput struct {
	Input  string             `json:"input"`
	Today  domain.Date        `json:"today"`
	Result *domain.ParsedDate `json:"result"`
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text...>",
		Short: "Parse a natural-language due date",
		Example: `  central parse next friday
  central parse "in 2 weeks" --today 2025-06-10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			out := parseOutput{Input: input, Today: svc.Today()}
			if parsed, ok := svc.ParseDate(cmd.Context(), input); ok {
				out.Result = &parsed
			}
			return opts.writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

type suggestOutput struct {
	Today       domain.Date             `json:"today"`
	Suggestions []domain.DateSuggestion `json:"suggestions"`
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var ignoreWeekends bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List quick-pick due date suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			return opts.writeJSON(cmd.OutOrStdout(), suggestOutput{
				Today:       svc.Today(),
				Suggestions: svc.Suggestions(cmd.Context(), ignoreWeekends),
			})
		},
	}
	cmd.Flags().BoolVar(&ignoreWeekends, "ignore-weekends", false, "move weekend suggestions to the following Monday")
	return cmd
}
