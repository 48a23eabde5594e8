package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Lend books to library users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to an INI config file")
	root.PersistentFlags().StringVar(&a.backend, "store", "", "store backend: memory, sqlite or redis")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database file")

	root.AddCommand(
		newBookCmd(a),
		newUserCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newStatsCmd(a),
		newShellCmd(a),
	)
	return root
}

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "book", Short: "Manage the catalogue"}

	var title, author, year string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.addBook(cmd.Context(), title, author, year)
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().StringVar(&author, "author", "", "book author")
	add.Flags().StringVar(&year, "year", "", "publication year")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List all books",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				a.listBooks()
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one book",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.showBook(args[0])
			},
		},
		&cobra.Command{
			Use:   "search [TERM]",
			Short: "Find books by title or author",
			Args:  cobra.MaximumNArgs(1),
			Run: func(_ *cobra.Command, args []string) {
				var term string
				if len(args) == 1 {
					term = args[0]
				}
				a.searchBooks(term)
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a book that is not on loan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.deleteBook(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.clearBooks(cmd.Context())
			},
		},
	)
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage library users"}

	var name, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.addUser(cmd.Context(), name, email)
		},
	}
	add.Flags().StringVar(&name, "name", "", "user name")
	add.Flags().StringVar(&email, "email", "", "user email address")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				a.listUsers()
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one user",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.showUser(args[0])
			},
		},
		&cobra.Command{
			Use:   "books ID",
			Short: "List the books a user has borrowed",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.userBooks(args[0])
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a user with no books on loan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.deleteUser(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.clearUsers(cmd.Context())
			},
		},
	)
	return cmd
}

func newBorrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow BOOK_ID USER_ID",
		Short: "Lend a book to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.borrow(cmd.Context(), args[0], args[1])
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return BOOK_ID",
		Short: "Take a book back from its borrower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.giveBack(cmd.Context(), args[0])
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalogue counts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.stats(withMetrics)
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "also print metrics in Prometheus text format")
	return cmd
}

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.shell(cmd.Context())
		},
	}
}
