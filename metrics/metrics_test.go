package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/kvstore"
	"library-lending/library"
)

func TestCollector_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOperation("borrow_book", nil)
	c.RecordOperation("borrow_book", nil)
	c.RecordOperation("borrow_book", &library.Error{Kind: library.KindBusinessRule, Code: library.CodeBorrowLimit})
	c.RecordOperation("return_book", fmt.Errorf("wrapped: %w", &library.Error{Kind: library.KindNotFound}))
	c.RecordOperation("create_book", errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("borrow_book", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("borrow_book", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("return_book", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("create_book", OutcomeError)))
}

func TestCollector_TracksServiceInventory(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	svc, err := library.NewService(ctx, kvstore.NewMemoryStore(), library.WithMetrics(c))
	require.NoError(t, err)

	book, err := svc.CreateBook(ctx, library.BookProps{Title: "Dune", Author: "Herbert", Year: 1965})
	require.NoError(t, err)
	user, err := svc.CreateUser(ctx, library.UserProps{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	require.NoError(t, svc.BorrowBook(ctx, book.ID, user.ID))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.books))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.users))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeLoans))

	require.Error(t, svc.BorrowBook(ctx, book.ID, user.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues(library.OpBorrowBook, OutcomeRejected)))

	require.NoError(t, svc.ReturnBook(ctx, book.ID))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.activeLoans))
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SetInventory(4, 2, 1)
	c.RecordOperation("create_book", nil)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, "library_books 4")
	assert.Contains(t, out, "library_active_loans 1")
	assert.Contains(t, out, `library_operations_total{operation="create_book",outcome="ok"} 1`)
}
