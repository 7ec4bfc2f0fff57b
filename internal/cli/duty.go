package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/dutyledger/internal/api/request"
)

func newDutyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duty",
		Short: "Duty assignment commands",
	}

	cmd.AddCommand(newDutyAssignCmd())
	cmd.AddCommand(newDutyHistoryCmd())
	cmd.AddCommand(newDutyRetireCmd())

	return cmd
}

func newDutyAssignCmd() *cobra.Command {
	var name, rank, title, start string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a new current duty to a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.AssignDuty(cmd.Context(), request.AssignDutyRequest{
				Name:          name,
				Rank:          rank,
				DutyTitle:     title,
				DutyStartDate: start,
			})
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person name (required)")
	cmd.Flags().StringVar(&rank, "rank", "", "Rank held during the duty (required)")
	cmd.Flags().StringVar(&title, "title", "", "Duty title (required)")
	cmd.Flags().StringVar(&start, "start", "", "Start date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("rank")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newDutyHistoryCmd() *cobra.Command {
	var desc bool

	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "Show a person's duty history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.DutyHistory(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&desc, "desc", false, "List the newest duty first")

	return cmd
}

func newDutyRetireCmd() *cobra.Command {
	var name, date string

	cmd := &cobra.Command{
		Use:   "retire",
		Short: "Retire a person, ending their current duty",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Retire(cmd.Context(), name, date)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person name (required)")
	cmd.Flags().StringVar(&date, "date", "", "Retirement date, YYYY-MM-DD (default: today on the server)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
