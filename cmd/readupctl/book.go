package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/readupapp/readup-server/internal/service"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage catalog entries",
}

var bookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		cover, _ := cmd.Flags().GetString("cover-url")
		owner, _ := cmd.Flags().GetString("owner")
		private, _ := cmd.Flags().GetBool("private")

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

		book, err := accountService(st, log).AddBook(cmd.Context(), service.AddBookRequest{
			Title:     title,
			Author:    author,
			CoverURL:  cover,
			OwnerID:   owner,
			IsPrivate: private,
		})
		if err != nil {
			return fmt.Errorf("add book: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added book %s (%s)\n", book.ID, book.Title)
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
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

		books, err := st.ListBooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tOWNER\tPRIVATE")
		for _, b := range books {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", b.ID, b.Title, b.Author, b.OwnerID, b.IsPrivate)
		}
		return w.Flush()
	},
}

func init() {
	bookAddCmd.Flags().String("title", "", "Title (required)")
	bookAddCmd.Flags().String("author", "", "Author")
	bookAddCmd.Flags().String("cover-url", "", "Cover image URL")
	bookAddCmd.Flags().String("owner", "", "Owning user ID (required for private books)")
	bookAddCmd.Flags().Bool("private", false, "Only the owner may shelve or read this book")
	_ = bookAddCmd.MarkFlagRequired("title")

	bookCmd.AddCommand(bookAddCmd, bookListCmd)
	rootCmd.AddCommand(bookCmd)
}
