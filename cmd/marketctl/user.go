package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var email, password string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an operator account",
		Long: `Creates an operator (admin) account. Operators cannot self-register over
the API. The password may be given with --password or MARKETCTL_ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("MARKETCTL_ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("a password is required")
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.accounts().CreateOperator(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (id %d)\n", user.Type, user.Email, user.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&email, "email", "", "Operator email")
	createAdmin.Flags().StringVar(&password, "password", "", "Operator password")
	_ = createAdmin.MarkFlagRequired("email")
	cmd.AddCommand(createAdmin)

	return cmd
}
