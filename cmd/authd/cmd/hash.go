package cmd

import (
	"fmt"

	"github.com/Brandon689/reqauth/auth"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print a bcrypt hash of password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
		if err != nil {
			return err
		}
		h, err := hasher.Hash(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}
