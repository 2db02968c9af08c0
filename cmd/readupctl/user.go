package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/readupapp/readup-server/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage readers",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a reader",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger()
		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer closeQuietly(st)

		user, err := accountService(st, log).CreateUser(cmd.Context(), service.CreateUserRequest{
			Email:       email,
			DisplayName: name,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.ID, user.Email)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered readers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger())
		if err != nil {
			return err
		}
		defer closeQuietly(st)

		users, err := st.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		defaults := defaultGoals(cfg)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tDAILY\tSTREAK\tBOOKS/YEAR\tREGISTERED")
		for _, u := range users {
			goals := u.Goals.Resolve(defaults)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				u.ID, u.Email, u.DisplayName,
				goals.DailyGoalMinutes, goals.StreakGoal, goals.BooksPerYearGoal,
				u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	userCreateCmd.Flags().String("email", "", "Email address (required)")
	userCreateCmd.Flags().String("name", "", "Display name")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}
