package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/kvstore"
	"library-lending/library"
)

func newService(t *testing.T) *library.Service {
	t.Helper()
	svc, err := library.NewService(context.Background(), kvstore.NewMemoryStore())
	require.NoError(t, err)
	return svc
}

func TestImportBooks(t *testing.T) {
	svc := newService(t)
	input := strings.Join([]string{
		"title,author,year",
		"1984,George Orwell,1949",
		"The Art of War, Sun Tzu, -500",
		",Nobody,2000",
		"Too Late,Someone,99999",
		"Short,row",
		`"Romeo and Juliet","William Shakespeare",1597`,
	}, "\n")

	var out bytes.Buffer
	imported, err := importBooks(context.Background(), svc, strings.NewReader(input), &out)
	require.NoError(t, err)

	require.Len(t, imported, 3)
	assert.Equal(t, "1984", imported[0].Title)
	assert.Equal(t, "Sun Tzu", imported[1].Author)
	assert.Equal(t, -500, imported[1].Year)
	assert.Equal(t, "3", imported[2].ID)

	assert.Len(t, svc.Books(), 3)
	assert.Contains(t, out.String(), "Line 4: ERROR - Enter the book title")
	assert.Contains(t, out.String(), "Line 5: ERROR - The year must be between")
	assert.Contains(t, out.String(), "Line 6: ERROR - expected title,author,year")
	assert.Contains(t, out.String(), "Errors: 3")
}

func TestImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Emma,Jane Austen,1815\n"), 0o644))
	db := filepath.Join(dir, "library.db")

	var out bytes.Buffer
	cmd := newImportCmd(&out)
	cmd.SetArgs([]string{"--db", db, csvPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Imported books:")

	store, err := kvstore.NewSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()
	svc, err := library.NewService(context.Background(), store)
	require.NoError(t, err)
	books := svc.SearchBooks("austen")
	require.Len(t, books, 1)
	assert.Equal(t, 1815, books[0].Year)
}

func TestImportCommand_MissingFile(t *testing.T) {
	var out bytes.Buffer
	cmd := newImportCmd(&out)
	cmd.SetArgs([]string{"--store", "memory", filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, cmd.Execute())
}
