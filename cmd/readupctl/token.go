package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readupapp/readup-server/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage access tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an access token for a reader",
	Long: `Issues a PASETO access token signed with the server's key.

Identify the reader with --user (ID) or --email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")
		if (userID == "") == (email == "") {
			return fmt.Errorf("exactly one of --user or --email is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger())
		if err != nil {
			return err
		}
		defer closeQuietly(st)

		user, err := lookupUser(cmd, st, userID, email)
		if err != nil {
			return err
		}

		key := cfg.Auth.AccessTokenKey
		if len(key) == 0 {
			if key, err = auth.LoadOrGenerateKey(cfg.Data.BasePath); err != nil {
				return fmt.Errorf("load signing key: %w", err)
			}
		}
		tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
		if err != nil {
			return err
		}

		token, err := tokens.GenerateAccessToken(user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().String("user", "", "User ID")
	tokenIssueCmd.Flags().String("email", "", "User email")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}
