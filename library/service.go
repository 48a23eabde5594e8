package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"library-lending/kvstore"
)

// MaxBorrowedBooks is how many books one user may hold at a time.
const MaxBorrowedBooks = 3

// Operation names reported to the MetricsRecorder.
const (
	OpCreateBook = "create_book"
	OpCreateUser = "create_user"
	OpBorrowBook = "borrow_book"
	OpReturnBook = "return_book"
	OpDeleteBook = "delete_book"
	OpDeleteUser = "delete_user"
	OpClearBooks = "clear_books"
	OpClearUsers = "clear_users"
)

// MetricsRecorder receives the outcome of every mutating operation.
type MetricsRecorder interface {
	RecordOperation(op string, err error)
	SetInventory(books, users, activeLoans int)
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(string, error) {}
func (nopMetrics) SetInventory(int, int, int)    {}

// Service owns the books and users and enforces the lending rules. It is the
// only writer of the persisted state and saves all of it after every change.
//
// A Service is meant to be driven by one caller at a time.
type Service struct {
	store   kvstore.Store
	st      *state
	log     *slog.Logger
	metrics MetricsRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService loads the library state from store. Missing keys start an empty
// library with both ID counters at 1.
func NewService(ctx context.Context, store kvstore.Store, opts ...Option) (*Service, error) {
	s := &Service{store: store, log: slog.Default(), metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(s)
	}

	st, err := loadState(ctx, store, s.log)
	if err != nil {
		return nil, fmt.Errorf("load library state: %w", err)
	}
	s.st = st
	s.publishInventory()

	s.log.Debug("library state loaded",
		slog.Int("books", st.books.Len()),
		slog.Int("users", st.users.Len()),
	)
	return s, nil
}

// ------------------ Persistence ------------------

// save writes the whole state. On failure it runs undo so memory matches the
// last successful save.
func (s *Service) save(ctx context.Context, undo func()) error {
	entries, err := s.st.entries()
	if err == nil {
		err = kvstore.SetAll(ctx, s.store, entries)
	}
	if err != nil {
		undo()
		return fmt.Errorf("save library state: %w", err)
	}
	return nil
}

func (s *Service) finish(op string, err error) error {
	s.metrics.RecordOperation(op, err)
	switch {
	case err == nil:
		s.publishInventory()
	case KindOf(err) != "":
		s.log.Debug("operation rejected", slog.String("operation", op), slog.String("error", err.Error()))
	default:
		s.log.Error("operation failed", slog.String("operation", op), slog.String("error", err.Error()))
	}
	return err
}

func (s *Service) publishInventory() {
	st := s.Stats()
	s.metrics.SetInventory(st.Books, st.Users, st.ActiveLoans)
}

// ------------------ Lookup ------------------

func (s *Service) findBook(id string) (*Book, error) {
	b, ok := s.st.books.Find(func(b *Book) bool { return b.ID == id })
	if !ok {
		return nil, newBookNotFoundError(id)
	}
	return b, nil
}

func (s *Service) findUser(id string) (*User, error) {
	u, ok := s.st.users.Find(func(u *User) bool { return u.ID == id })
	if !ok {
		return nil, newUserNotFoundError(id)
	}
	return u, nil
}

// GetBookByID returns a copy of the book with the given ID.
func (s *Service) GetBookByID(id string) (Book, error) {
	b, err := s.findBook(id)
	if err != nil {
		return Book{}, err
	}
	return b.Clone(), nil
}

// GetUserByID returns a copy of the user with the given ID.
func (s *Service) GetUserByID(id string) (User, error) {
	u, err := s.findUser(id)
	if err != nil {
		return User{}, err
	}
	return u.Clone(), nil
}

// Books returns a snapshot of all books in insertion order.
func (s *Service) Books() []Book {
	out := make([]Book, 0, s.st.books.Len())
	for _, b := range s.st.books.Items() {
		out = append(out, b.Clone())
	}
	return out
}

// Users returns a snapshot of all users in insertion order.
func (s *Service) Users() []User {
	out := make([]User, 0, s.st.users.Len())
	for _, u := range s.st.users.Items() {
		out = append(out, u.Clone())
	}
	return out
}

// SearchBooks matches term case-insensitively against title and author.
// A blank term matches every book. Results keep collection order.
func (s *Service) SearchBooks(term string) []Book {
	needle := strings.ToLower(strings.TrimSpace(term))
	matches := s.st.books.Filter(func(b *Book) bool {
		return needle == "" ||
			strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle)
	})
	out := make([]Book, 0, len(matches))
	for _, b := range matches {
		out = append(out, b.Clone())
	}
	return out
}

// BorrowedBooks returns the books userID holds, in borrow order.
func (s *Service) BorrowedBooks(userID string) ([]Book, error) {
	u, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(u.BorrowedBooks))
	for _, id := range u.BorrowedBooks {
		b, err := s.findBook(id)
		if err != nil {
			return nil, err
		}
		out = append(out, b.Clone())
	}
	return out, nil
}

// Stats counts books, users and active loans.
func (s *Service) Stats() Stats {
	loans := 0
	for _, b := range s.st.books.Items() {
		if b.IsBorrowed {
			loans++
		}
	}
	return Stats{Books: s.st.books.Len(), Users: s.st.users.Len(), ActiveLoans: loans}
}

// ------------------ Creation ------------------

// CreateBook stores a new, unborrowed book under the next book ID. Field
// validation is the caller's job.
func (s *Service) CreateBook(ctx context.Context, props BookProps) (Book, error) {
	book := &Book{
		ID:     strconv.Itoa(s.st.bookIDCounter),
		Title:  props.Title,
		Author: props.Author,
		Year:   props.Year,
	}
	s.st.books.Add(book)
	s.st.bookIDCounter++

	if err := s.save(ctx, func() {
		s.st.books.Remove(book)
		s.st.bookIDCounter--
	}); err != nil {
		return Book{}, s.finish(OpCreateBook, err)
	}

	s.log.Info("book created", slog.String("book_id", book.ID), slog.String("title", book.Title))
	return book.Clone(), s.finish(OpCreateBook, nil)
}

// CreateUser stores a new user with no loans under the next user ID.
func (s *Service) CreateUser(ctx context.Context, props UserProps) (User, error) {
	user := &User{
		ID:            strconv.Itoa(s.st.userIDCounter),
		Name:          props.Name,
		Email:         props.Email,
		BorrowedBooks: []string{},
	}
	s.st.users.Add(user)
	s.st.userIDCounter++

	if err := s.save(ctx, func() {
		s.st.users.Remove(user)
		s.st.userIDCounter--
	}); err != nil {
		return User{}, s.finish(OpCreateUser, err)
	}

	s.log.Info("user created", slog.String("user_id", user.ID))
	return user.Clone(), s.finish(OpCreateUser, nil)
}

// ------------------ Circulation ------------------

// BorrowBook lends bookID to userID. Both IDs are resolved before any rule is
// checked, so a bad ID never changes state.
func (s *Service) BorrowBook(ctx context.Context, bookID, userID string) error {
	book, err := s.findBook(bookID)
	if err != nil {
		return s.finish(OpBorrowBook, err)
	}
	user, err := s.findUser(userID)
	if err != nil {
		return s.finish(OpBorrowBook, err)
	}
	if len(user.BorrowedBooks) >= MaxBorrowedBooks {
		return s.finish(OpBorrowBook, newBorrowLimitError(user.ID))
	}
	if book.IsBorrowed {
		return s.finish(OpBorrowBook, newAlreadyBorrowedError(book.ID))
	}

	prevLoans := slices.Clone(user.BorrowedBooks)
	book.Borrow(user.ID)
	user.BorrowBook(book.ID)

	if err := s.save(ctx, func() {
		book.Return()
		user.BorrowedBooks = prevLoans
	}); err != nil {
		return s.finish(OpBorrowBook, err)
	}

	s.log.Info("book borrowed", slog.String("book_id", book.ID), slog.String("user_id", user.ID))
	return s.finish(OpBorrowBook, nil)
}

// ReturnBook ends the loan of bookID.
func (s *Service) ReturnBook(ctx context.Context, bookID string) error {
	book, err := s.findBook(bookID)
	if err != nil {
		return s.finish(OpReturnBook, err)
	}
	if book.BorrowedBy == "" {
		return s.finish(OpReturnBook, newNotBorrowedError(book.ID))
	}
	user, err := s.findUser(book.BorrowedBy)
	if err != nil {
		s.log.Error("loan references a missing user",
			slog.String("book_id", book.ID),
			slog.String("user_id", book.BorrowedBy),
		)
		return s.finish(OpReturnBook, err)
	}

	prevLoans := slices.Clone(user.BorrowedBooks)
	book.Return()
	user.ReturnBook(book.ID)

	if err := s.save(ctx, func() {
		book.Borrow(user.ID)
		user.BorrowedBooks = prevLoans
	}); err != nil {
		return s.finish(OpReturnBook, err)
	}

	s.log.Info("book returned", slog.String("book_id", book.ID), slog.String("user_id", user.ID))
	return s.finish(OpReturnBook, nil)
}

// ------------------ Removal ------------------

// DeleteBook removes a book that is not on loan.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.findBook(bookID)
	if err != nil {
		return s.finish(OpDeleteBook, err)
	}
	if book.IsBorrowed {
		return s.finish(OpDeleteBook, newBookBorrowedError(book.ID))
	}

	restore := s.st.books.checkpoint()
	s.st.books.Remove(book)
	if err := s.save(ctx, restore); err != nil {
		return s.finish(OpDeleteBook, err)
	}

	s.log.Info("book deleted", slog.String("book_id", book.ID))
	return s.finish(OpDeleteBook, nil)
}

// DeleteUser removes a user who holds no books.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.findUser(userID)
	if err != nil {
		return s.finish(OpDeleteUser, err)
	}
	if n := len(user.BorrowedBooks); n > 0 {
		return s.finish(OpDeleteUser, newUserHasLoansError(user.ID, n))
	}

	restore := s.st.users.checkpoint()
	s.st.users.Remove(user)
	if err := s.save(ctx, restore); err != nil {
		return s.finish(OpDeleteUser, err)
	}

	s.log.Info("user deleted", slog.String("user_id", user.ID))
	return s.finish(OpDeleteUser, nil)
}

// ClearBooks removes every book and resets the book ID counter. It is refused
// while any book is on loan, since users would be left holding unknown IDs.
func (s *Service) ClearBooks(ctx context.Context) error {
	if n := s.Stats().ActiveLoans; n > 0 {
		return s.finish(OpClearBooks, newLoansOutstandingError("books", n))
	}

	restore, counter := s.st.books.checkpoint(), s.st.bookIDCounter
	s.st.books.Clear()
	s.st.bookIDCounter = 1
	if err := s.save(ctx, func() {
		restore()
		s.st.bookIDCounter = counter
	}); err != nil {
		return s.finish(OpClearBooks, err)
	}

	s.log.Info("books cleared")
	return s.finish(OpClearBooks, nil)
}

// ClearUsers removes every user and resets the user ID counter. It is refused
// while any user holds a book.
func (s *Service) ClearUsers(ctx context.Context) error {
	if n := s.Stats().ActiveLoans; n > 0 {
		return s.finish(OpClearUsers, newLoansOutstandingError("users", n))
	}

	restore, counter := s.st.users.checkpoint(), s.st.userIDCounter
	s.st.users.Clear()
	s.st.userIDCounter = 1
	if err := s.save(ctx, func() {
		restore()
		s.st.userIDCounter = counter
	}); err != nil {
		return s.finish(OpClearUsers, err)
	}

	s.log.Info("users cleared")
	return s.finish(OpClearUsers, nil)
}
