package cli

import (
	"github.com/spf13/cobra"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Person management commands",
	}

	cmd.AddCommand(newPersonRegisterCmd())
	cmd.AddCommand(newPersonListCmd())
	cmd.AddCommand(newPersonGetCmd())

	return cmd
}

func newPersonRegisterCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new person",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.RegisterPerson(cmd.Context(), name)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPersonListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every person with their current status",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ListPersons(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPersonGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a person's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetPerson(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
