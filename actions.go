package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"library-lending/library"
	"library-lending/metrics"
	"library-lending/validation"
)

// Actions shared by the one-shot commands and the shell. Input is validated
// here, before it reaches the service.

func (a *app) addBook(ctx context.Context, title, author, year string) error {
	y, yearMsg := validation.ParseYear(year)
	if msg := validation.First(validation.ValidateTitle(title), validation.ValidateAuthor(author), yearMsg); msg != "" {
		return errors.New(msg)
	}
	book, err := a.svc.CreateBook(ctx, library.BookProps{
		Title:  strings.TrimSpace(title),
		Author: strings.TrimSpace(author),
		Year:   y,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added book ID %s: %s by %s (%d)\n", book.ID, book.Title, book.Author, book.Year)
	return nil
}

func (a *app) addUser(ctx context.Context, name, email string) error {
	if msg := validation.First(validation.ValidateName(name), validation.ValidateEmail(email)); msg != "" {
		return errors.New(msg)
	}
	user, err := a.svc.CreateUser(ctx, library.UserProps{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added user '%s' with ID %s\n", user.Name, user.ID)
	return nil
}

func (a *app) listBooks() {
	books := a.svc.Books()
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books in library.")
		return
	}
	a.printBooks(books)
}

func (a *app) listUsers() {
	users := a.svc.Users()
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users registered.")
		return
	}
	a.printUsers(users)
}

func (a *app) showBook(id string) error {
	if msg := validation.ValidateID(id); msg != "" {
		return errors.New(msg)
	}
	book, err := a.svc.GetBookByID(strings.TrimSpace(id))
	if err != nil {
		return err
	}
	a.printBooks([]library.Book{book})
	return nil
}

func (a *app) showUser(id string) error {
	if msg := validation.ValidateID(id); msg != "" {
		return errors.New(msg)
	}
	user, err := a.svc.GetUserByID(strings.TrimSpace(id))
	if err != nil {
		return err
	}
	a.printUsers([]library.User{user})
	return nil
}

func (a *app) searchBooks(query string) {
	books := a.svc.SearchBooks(query)
	if len(books) == 0 {
		fmt.Fprintf(a.out, "No books found matching '%s'.\n", query)
		return
	}
	fmt.Fprintf(a.out, "Found %d book(s) matching '%s':\n", len(books), query)
	a.printBooks(books)
}

func (a *app) userBooks(id string) error {
	if msg := validation.ValidateID(id); msg != "" {
		return errors.New(msg)
	}
	id = strings.TrimSpace(id)
	books, err := a.svc.BorrowedBooks(id)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintf(a.out, "User %s has no borrowed books.\n", id)
		return nil
	}
	a.printBooks(books)
	return nil
}

func (a *app) borrow(ctx context.Context, bookID, userID string) error {
	if msg := validation.First(validation.ValidateID(bookID), validation.ValidateID(userID)); msg != "" {
		return errors.New(msg)
	}
	bookID, userID = strings.TrimSpace(bookID), strings.TrimSpace(userID)
	if err := a.svc.BorrowBook(ctx, bookID, userID); err != nil {
		return err
	}
	book, _ := a.svc.GetBookByID(bookID)
	user, _ := a.svc.GetUserByID(userID)
	fmt.Fprintf(a.out, "Book '%s' borrowed by %s\n", book.Title, user.Name)
	return nil
}

func (a *app) giveBack(ctx context.Context, bookID string) error {
	if msg := validation.ValidateID(bookID); msg != "" {
		return errors.New(msg)
	}
	bookID = strings.TrimSpace(bookID)
	before, err := a.svc.GetBookByID(bookID)
	if err != nil {
		return err
	}
	if err := a.svc.ReturnBook(ctx, bookID); err != nil {
		return err
	}
	who := before.BorrowedBy
	if user, err := a.svc.GetUserByID(before.BorrowedBy); err == nil {
		who = user.Name
	}
	fmt.Fprintf(a.out, "Book '%s' returned by %s\n", before.Title, who)
	return nil
}

func (a *app) deleteBook(ctx context.Context, id string) error {
	if msg := validation.ValidateID(id); msg != "" {
		return errors.New(msg)
	}
	id = strings.TrimSpace(id)
	if err := a.svc.DeleteBook(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted book %s\n", id)
	return nil
}

func (a *app) deleteUser(ctx context.Context, id string) error {
	if msg := validation.ValidateID(id); msg != "" {
		return errors.New(msg)
	}
	id = strings.TrimSpace(id)
	if err := a.svc.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user %s\n", id)
	return nil
}

func (a *app) clearBooks(ctx context.Context) error {
	if err := a.svc.ClearBooks(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All books removed.")
	return nil
}

func (a *app) clearUsers(ctx context.Context) error {
	if err := a.svc.ClearUsers(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All users removed.")
	return nil
}

func (a *app) stats(withMetrics bool) error {
	st := a.svc.Stats()
	fmt.Fprintf(a.out, "Books: %d\nUsers: %d\nActive loans: %d\n", st.Books, st.Users, st.ActiveLoans)
	if !withMetrics {
		return nil
	}
	fmt.Fprintln(a.out)
	return metrics.WriteText(a.out, a.registry)
}

// describe renders err for a person: domain errors show only their message.
func describe(err error) string {
	var domainErr *library.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
