package cmd

import (
	"bufio"
	"fmt"

	"github.com/Brandon689/reqauth/auth"
	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	passwordFlag string
	stdinFlag    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users in the SQLite store",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		users, err := openUsers()
		if err != nil {
			return err
		}
		defer users.Close()

		p, err := users.Register(cmd.Context(), emailFlag, password)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", p.SubjectID)
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change a user's password and revoke their sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		a, users, cleanup, err := buildAuthenticator(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		if users == nil {
			if users, err = openUsers(); err != nil {
				return err
			}
			defer users.Close()
		}

		p, ok, err := users.FindByIdentifier(cmd.Context(), emailFlag)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no user %q", emailFlag)
		}

		// Header authenticators hold no sessions to revoke.
		var revoker auth.SubjectRevoker
		if sm, ok := a.(auth.SessionManager); ok {
			revoker = sm
		}
		n, err := auth.ChangePassword(cmd.Context(), users, revoker, p.SubjectID, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s; revoked %d sessions\n", p.SubjectID, n)
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	password := passwordFlag
	if stdinFlag {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		if scanner.Scan() {
			password = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return "", fmt.Errorf("password is required (use --password or --stdin)")
	}
	return password, nil
}

func init() {
	for _, c := range []*cobra.Command{createUserCmd, passwdCmd} {
		c.Flags().StringVar(&emailFlag, "email", "", "User identifier (email)")
		c.Flags().StringVar(&passwordFlag, "password", "", "User password")
		c.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin")
		usersCmd.AddCommand(c)
	}
}
