package library

import (
	"errors"
	"fmt"
)

// Kind classifies a Service failure.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindBusinessRule Kind = "BusinessRuleViolation"
)

// Sentinels for errors.Is matching on a Kind.
var (
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
)

// Error codes.
const (
	CodeBookNotFound     = "BOOK_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeBorrowLimit      = "BORROW_LIMIT"
	CodeAlreadyBorrowed  = "ALREADY_BORROWED"
	CodeNotBorrowed      = "NOT_BORROWED"
	CodeBookBorrowed     = "BOOK_BORROWED"
	CodeUserHasLoans     = "USER_HAS_LOANS"
	CodeLoansOutstanding = "LOANS_OUTSTANDING"
)

// Error is returned by every rejected Service operation. Message is meant
// to be shown to the person driving the CLI.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) and errors.Is(err, ErrBusinessRule) match by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrBusinessRule:
		return e.Kind == KindBusinessRule
	}
	return false
}

// KindOf returns the Kind of err, or "" if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newBookNotFoundError(id string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeBookNotFound, Message: fmt.Sprintf("book %q not found", id)}
}

func newUserNotFoundError(id string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeUserNotFound, Message: fmt.Sprintf("user %q not found", id)}
}

func newBorrowLimitError(userID string) *Error {
	return &Error{
		Kind:    KindBusinessRule,
		Code:    CodeBorrowLimit,
		Message: fmt.Sprintf("user %q already has %d books borrowed", userID, MaxBorrowedBooks),
	}
}

func newAlreadyBorrowedError(bookID string) *Error {
	return &Error{Kind: KindBusinessRule, Code: CodeAlreadyBorrowed, Message: fmt.Sprintf("book %q is already borrowed", bookID)}
}

func newNotBorrowedError(bookID string) *Error {
	return &Error{Kind: KindBusinessRule, Code: CodeNotBorrowed, Message: fmt.Sprintf("book %q is not borrowed", bookID)}
}

func newBookBorrowedError(bookID string) *Error {
	return &Error{Kind: KindBusinessRule, Code: CodeBookBorrowed, Message: fmt.Sprintf("book %q is borrowed and cannot be deleted", bookID)}
}

func newUserHasLoansError(userID string, n int) *Error {
	return &Error{
		Kind:    KindBusinessRule,
		Code:    CodeUserHasLoans,
		Message: fmt.Sprintf("user %q still has %d borrowed book(s) and cannot be deleted", userID, n),
	}
}

func newLoansOutstandingError(what string, n int) *Error {
	return &Error{
		Kind:    KindBusinessRule,
		Code:    CodeLoansOutstanding,
		Message: fmt.Sprintf("cannot clear %s while %d loan(s) are outstanding", what, n),
	}
}
