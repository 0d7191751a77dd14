package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ideamill/ideamill/internal/projectconfig"
)

func newProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <topic>",
		Short: "Run one topic through the pipeline and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic is required")
			}

			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			sup, st, err := buildPipeline(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			outcome, err := sup.Process(cmd.Context(), topic)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	return cmd
}
