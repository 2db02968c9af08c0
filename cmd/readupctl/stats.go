package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/store"
	"github.com/readupapp/readup-server/internal/store/rollup"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print lifetime reading totals",
	Long: `Prints the pre-aggregated lifetime totals for every reader, or for one
reader with --user or --email. The server must be stopped first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")

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

		ru, err := rollup.Open(cfg.RollupPath(), log)
		if err != nil {
			return fmt.Errorf("open rollups (is the server running?): %w", err)
		}
		defer closeQuietly(ru)

		var all []*domain.LifetimeStats
		if userID != "" || email != "" {
			user, err := lookupUser(cmd, st, userID, email)
			if err != nil {
				return err
			}
			stats, err := ru.Get(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			all = []*domain.LifetimeStats{stats}
		} else if all, err = ru.All(cmd.Context()); err != nil {
			return fmt.Errorf("read rollups: %w", err)
		}

		sort.Slice(all, func(i, j int) bool {
			return all[i].TotalReadingSeconds > all[j].TotalReadingSeconds
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tREADING\tSESSIONS\tFINISHED\tLAST READ")
		for _, s := range all {
			last := s.LastReadDay
			if last == "" {
				last = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				s.UserID,
				(time.Duration(s.TotalReadingSeconds) * time.Second).String(),
				s.SessionsRecorded, s.BooksFinished, last)
		}
		return w.Flush()
	},
}

// lookupUser resolves a reader by ID or email.
func lookupUser(cmd *cobra.Command, st store.Store, userID, email string) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if userID != "" {
		user, err = st.GetUser(cmd.Context(), userID)
	} else {
		user, err = st.GetUserByEmail(cmd.Context(), email)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func init() {
	statsCmd.Flags().String("user", "", "Only this user ID")
	statsCmd.Flags().String("email", "", "Only this user email")

	rootCmd.AddCommand(statsCmd)
}
