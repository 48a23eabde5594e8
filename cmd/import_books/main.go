package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-lending/config"
	"library-lending/kvstore"
	"library-lending/library"
	"library-lending/logger"
	"library-lending/validation"
)

func main() {
	if err := newImportCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newImportCmd(out io.Writer) *cobra.Command {
	var configPath, backend, dbPath string
	cmd := &cobra.Command{
		Use:           "import_books FILE.csv",
		Short:         "Add books from a title,author,year CSV file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if backend != "" {
				cfg.StoreBackend = backend
			}
			if dbPath != "" {
				cfg.SQLitePath = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			store, err := kvstore.Open(kvstore.Options{
				Backend:    cfg.StoreBackend,
				SQLitePath: cfg.SQLitePath,
				Redis: kvstore.RedisOptions{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
					Prefix:   cfg.RedisPrefix,
				},
			})
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
			}
			defer store.Close()

			svc, err := library.NewService(cmd.Context(), store,
				library.WithLogger(logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Importing books from %s...\n", args[0])
			imported, err := importBooks(cmd.Context(), svc, f, out)
			if err != nil {
				return err
			}
			printSummary(out, imported)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to an INI config file")
	cmd.Flags().StringVar(&backend, "store", "", "store backend: memory, sqlite or redis")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")
	return cmd
}

// importBooks creates one book per valid row of r. Invalid rows are reported
// and skipped. A header row starting with "title" is ignored.
func importBooks(ctx context.Context, svc *library.Service, r io.Reader, out io.Writer) ([]library.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var (
		imported   []library.Book
		errorCount int
	)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				fmt.Fprintf(out, "Line %d: ERROR - expected title,author,year\n", line)
				errorCount++
				continue
			}
			return imported, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "title") {
			continue
		}

		title, author := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		year, yearMsg := validation.ParseYear(rec[2])
		if msg := validation.First(validation.ValidateTitle(title), validation.ValidateAuthor(author), yearMsg); msg != "" {
			fmt.Fprintf(out, "Line %d: ERROR - %s\n", line, msg)
			errorCount++
			continue
		}

		book, err := svc.CreateBook(ctx, library.BookProps{Title: title, Author: author, Year: year})
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		fmt.Fprintf(out, "Importing: %s by %s... SUCCESS (ID: %s)\n", title, author, book.ID)
		imported = append(imported, book)
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", len(imported))
	fmt.Fprintf(out, "Errors: %d\n", errorCount)
	return imported, nil
}

func printSummary(out io.Writer, books []library.Book) {
	if len(books) == 0 {
		return
	}
	fmt.Fprintln(out, "\nImported books:")
	fmt.Fprintf(out, "%-5s %-50s %-30s %s\n", "ID", "Title", "Author", "Year")
	fmt.Fprintln(out, strings.Repeat("-", 92))
	for _, book := range books {
		fmt.Fprintf(out, "%-5s %-50s %-30s %d\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30), book.Year)
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
