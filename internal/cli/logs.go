package cli

import (
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the most recent process log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ProcessLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to show (default: server default)")

	return cmd
}
