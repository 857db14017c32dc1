package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/recruiter/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the roles candidates can apply for",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, role := range roles.All() {
			requirements, err := roles.Requirements(role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n\n", roles.Title(role), role, requirements)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
