package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/central/internal/domain"
)

func newBucketsCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "buckets",
		Short: "Group tasks into relative due-date buckets",
		Long: `Group tasks into relative due-date buckets.

Input is {"tasks":[{"id":"1","dueDate":"2025-06-10","position":0}, ...]} read
from a file or stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			var in struct {
				Tasks []domain.Task `json:"tasks"`
			}
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("invalid tasks JSON: %w", err)
			}

			grouping, err := svc.GroupTasks(cmd.Context(), in.Tasks)
			if err != nil {
				return err
			}
			return opts.writeJSON(cmd.OutOrStdout(), grouping)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "tasks file (JSON, or YAML when named *.yaml), - for stdin")
	return cmd
}
