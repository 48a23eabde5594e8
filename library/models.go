package library

import "slices"

// Book represents a catalogued book and its current loan state.
// BorrowedBy holds the borrowing user's ID, or "" when the book is on the shelf.
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	IsBorrowed bool   `json:"isBorrowed"`
	BorrowedBy string `json:"borrowedBy"`
}

// BookProps are the caller-supplied fields of a new book.
type BookProps struct {
	Title  string
	Author string
	Year   int
}

// Borrow records the loan on the book side. The Service checks the rules.
func (b *Book) Borrow(userID string) {
	b.BorrowedBy = userID
	b.IsBorrowed = true
}

// Return clears the loan on the book side.
func (b *Book) Return() {
	b.BorrowedBy = ""
	b.IsBorrowed = false
}

// Clone returns a detached copy.
func (b *Book) Clone() Book { return *b }

// User represents a registered library user.
// BorrowedBooks lists book IDs in the order they were borrowed.
type User struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	BorrowedBooks []string `json:"borrowedBooks"`
}

// UserProps are the caller-supplied fields of a new user.
type UserProps struct {
	Name  string
	Email string
}

// BorrowBook appends bookID to the user's loans without deduplicating.
func (u *User) BorrowBook(bookID string) {
	u.BorrowedBooks = append(u.BorrowedBooks, bookID)
}

// ReturnBook drops every occurrence of bookID from the user's loans.
func (u *User) ReturnBook(bookID string) {
	u.BorrowedBooks = slices.DeleteFunc(u.BorrowedBooks, func(id string) bool { return id == bookID })
}

// Clone returns a copy that shares no backing array with u.
func (u *User) Clone() User {
	c := *u
	c.BorrowedBooks = append([]string{}, u.BorrowedBooks...)
	return c
}

// Stats summarises the library's current inventory.
type Stats struct {
	Books       int `json:"books"`
	Users       int `json:"users"`
	ActiveLoans int `json:"active_loans"`
}
