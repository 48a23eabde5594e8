package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"library-lending/kvstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Keys of the persisted state.
const (
	KeyBooks         = "books"
	KeyUsers         = "users"
	KeyBookIDCounter = "bookIdCounter"
	KeyUserIDCounter = "userIdCounter"
)

// refID is an entity reference as found in stored JSON. It accepts a string,
// an integer or null, and writes "" back as null.
type refID string

func (r *refID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = refID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or integer, got %s", b)
	}
	*r = refID(strconv.FormatInt(n, 10))
	return nil
}

func (r refID) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

type bookRecord struct {
	ID         refID  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	IsBorrowed bool   `json:"isBorrowed"`
	BorrowedBy refID  `json:"borrowedBy"`
}

type userRecord struct {
	ID            refID   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	BorrowedBooks []refID `json:"borrowedBooks"`
}

// state is everything the Service persists, saved as one unit.
type state struct {
	books         *Collection[*Book]
	users         *Collection[*User]
	bookIDCounter int
	userIDCounter int
}

func (st *state) entries() ([]kvstore.Entry, error) {
	books := make([]bookRecord, 0, st.books.Len())
	for _, b := range st.books.Items() {
		books = append(books, bookRecord{
			ID: refID(b.ID), Title: b.Title, Author: b.Author, Year: b.Year,
			IsBorrowed: b.IsBorrowed, BorrowedBy: refID(b.BorrowedBy),
		})
	}
	users := make([]userRecord, 0, st.users.Len())
	for _, u := range st.users.Items() {
		loans := make([]refID, 0, len(u.BorrowedBooks))
		for _, id := range u.BorrowedBooks {
			loans = append(loans, refID(id))
		}
		users = append(users, userRecord{ID: refID(u.ID), Name: u.Name, Email: u.Email, BorrowedBooks: loans})
	}

	booksJSON, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("encode books: %w", err)
	}
	usersJSON, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return []kvstore.Entry{
		{Key: KeyBooks, Value: booksJSON},
		{Key: KeyUsers, Value: usersJSON},
		{Key: KeyBookIDCounter, Value: []byte(strconv.Itoa(st.bookIDCounter))},
		{Key: KeyUserIDCounter, Value: []byte(strconv.Itoa(st.userIDCounter))},
	}, nil
}

// loadState reads the four keys from store. Absent or unreadable values fall
// back to defaults and malformed records are dropped, so the result always
// satisfies the loan invariants.
func loadState(ctx context.Context, store kvstore.Store, log *slog.Logger) (*state, error) {
	rawBooks, err := loadRecords(ctx, store, KeyBooks, log)
	if err != nil {
		return nil, err
	}
	rawUsers, err := loadRecords(ctx, store, KeyUsers, log)
	if err != nil {
		return nil, err
	}

	st := &state{books: NewCollection[*Book](), users: NewCollection[*User]()}

	seen := make(map[string]bool)
	for i, raw := range rawBooks {
		var rec bookRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == "" || rec.Title == "" || rec.Author == "" || seen[string(rec.ID)] {
			log.Warn("dropping malformed book record", slog.Int("index", i), slog.String("record", string(raw)))
			continue
		}
		seen[string(rec.ID)] = true
		st.books.Add(&Book{
			ID: string(rec.ID), Title: rec.Title, Author: rec.Author, Year: rec.Year,
			BorrowedBy: string(rec.BorrowedBy),
		})
	}

	clear(seen)
	for i, raw := range rawUsers {
		var rec userRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == "" || rec.Name == "" || seen[string(rec.ID)] {
			log.Warn("dropping malformed user record", slog.Int("index", i), slog.String("record", string(raw)))
			continue
		}
		seen[string(rec.ID)] = true
		loans := make([]string, 0, len(rec.BorrowedBooks))
		for _, id := range rec.BorrowedBooks {
			loans = append(loans, string(id))
		}
		st.users.Add(&User{ID: string(rec.ID), Name: rec.Name, Email: rec.Email, BorrowedBooks: loans})
	}

	st.reconcileLoans(log)

	if st.bookIDCounter, err = loadCounter(ctx, store, KeyBookIDCounter, log); err != nil {
		return nil, err
	}
	if st.userIDCounter, err = loadCounter(ctx, store, KeyUserIDCounter, log); err != nil {
		return nil, err
	}
	for _, b := range st.books.Items() {
		st.bookIDCounter = counterAbove(st.bookIDCounter, b.ID)
	}
	for _, u := range st.users.Items() {
		st.userIDCounter = counterAbove(st.userIDCounter, u.ID)
	}
	return st, nil
}

// reconcileLoans keeps only loans recorded on both sides.
func (st *state) reconcileLoans(log *slog.Logger) {
	users := make(map[string]*User, st.users.Len())
	for _, u := range st.users.Items() {
		users[u.ID] = u
	}
	books := make(map[string]*Book, st.books.Len())
	for _, b := range st.books.Items() {
		books[b.ID] = b
		if b.BorrowedBy == "" {
			continue
		}
		if u, ok := users[b.BorrowedBy]; !ok || !slices.Contains(u.BorrowedBooks, b.ID) {
			log.Warn("clearing dangling loan", slog.String("book_id", b.ID), slog.String("user_id", b.BorrowedBy))
			b.BorrowedBy = ""
		}
	}
	for _, b := range st.books.Items() {
		b.IsBorrowed = b.BorrowedBy != ""
	}

	for _, u := range st.users.Items() {
		kept := make([]string, 0, len(u.BorrowedBooks))
		for _, id := range u.BorrowedBooks {
			if b, ok := books[id]; ok && b.BorrowedBy == u.ID && !slices.Contains(kept, id) {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(u.BorrowedBooks) {
			log.Warn("dropping unmatched loan references",
				slog.String("user_id", u.ID),
				slog.Int("dropped", len(u.BorrowedBooks)-len(kept)),
			)
		}
		u.BorrowedBooks = kept
	}
}

func loadRecords(ctx context.Context, store kvstore.Store, key string, log *slog.Logger) ([]jsoniter.RawMessage, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("ignoring unreadable stored value", slog.String("key", key), slog.String("error", err.Error()))
		return nil, nil
	}
	return raw, nil
}

func loadCounter(ctx context.Context, store kvstore.Store, key string, log *slog.Logger) (int, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return 1, nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil || n < 1 {
		log.Warn("resetting unreadable counter", slog.String("key", key), slog.String("value", string(data)))
		return 1, nil
	}
	return n, nil
}

// counterAbove returns a counter that will not reissue id.
func counterAbove(counter int, id string) int {
	n, err := strconv.Atoi(id)
	if err != nil || n < counter {
		return counter
	}
	return n + 1
}
