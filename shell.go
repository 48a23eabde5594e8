package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// shell runs the interactive prompt until "exit" or end of input.
func (a *app) shell(ctx context.Context) error {
	sc := bufio.NewScanner(a.in)
	interactive := isTerminal(a.in)

	if interactive {
		fmt.Fprintln(a.out, "Welcome to the Library Lending System!")
		a.printHelp()
	}

	for {
		if interactive {
			fmt.Fprint(a.out, "\n> ")
		}
		if !sc.Scan() {
			break
		}
		cmd := strings.TrimSpace(sc.Text())

		var err error
		switch cmd {
		case "":
			continue
		case "add book":
			err = a.handleAddBook(ctx, sc, interactive)
		case "add user":
			err = a.handleAddUser(ctx, sc, interactive)
		case "list books":
			a.listBooks()
		case "list users":
			a.listUsers()
		case "search book":
			if query, ok := a.ask(sc, interactive, "Query: "); ok {
				a.searchBooks(query)
			}
		case "borrow":
			err = a.handleBorrow(ctx, sc, interactive)
		case "return":
			if bookID, ok := a.ask(sc, interactive, "Book ID: "); ok {
				err = a.giveBack(ctx, bookID)
			}
		case "user books":
			if userID, ok := a.ask(sc, interactive, "User ID: "); ok {
				err = a.userBooks(userID)
			}
		case "delete book":
			if bookID, ok := a.ask(sc, interactive, "Book ID: "); ok {
				err = a.deleteBook(ctx, bookID)
			}
		case "delete user":
			if userID, ok := a.ask(sc, interactive, "User ID: "); ok {
				err = a.deleteUser(ctx, userID)
			}
		case "clear books":
			err = a.clearBooks(ctx)
		case "clear users":
			err = a.clearUsers(ctx)
		case "stats":
			err = a.stats(false)
		case "help":
			a.printHelp()
		case "exit":
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(a.out, "Unknown command. Type 'help' to see the available commands.")
		}
		if err != nil {
			fmt.Fprintf(a.out, "Error: %s\n", describe(err))
		}
	}
	return sc.Err()
}

func (a *app) printHelp() {
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  Books: add book, list books, search book, delete book, clear books")
	fmt.Fprintln(a.out, "  Users: add user, list users, user books, delete user, clear users")
	fmt.Fprintln(a.out, "  Lending: borrow, return")
	fmt.Fprintln(a.out, "  System: stats, help, exit")
}

// ask prints prompt on a terminal and reads the next line. ok is false at
// end of input.
func (a *app) ask(sc *bufio.Scanner, interactive bool, prompt string) (string, bool) {
	if interactive {
		fmt.Fprint(a.out, prompt)
	}
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func (a *app) handleAddBook(ctx context.Context, sc *bufio.Scanner, interactive bool) error {
	title, ok := a.ask(sc, interactive, "Title: ")
	if !ok {
		return nil
	}
	author, ok := a.ask(sc, interactive, "Author: ")
	if !ok {
		return nil
	}
	year, ok := a.ask(sc, interactive, "Year: ")
	if !ok {
		return nil
	}
	return a.addBook(ctx, title, author, year)
}

func (a *app) handleAddUser(ctx context.Context, sc *bufio.Scanner, interactive bool) error {
	name, ok := a.ask(sc, interactive, "Name: ")
	if !ok {
		return nil
	}
	email, ok := a.ask(sc, interactive, "Email: ")
	if !ok {
		return nil
	}
	return a.addUser(ctx, name, email)
}

func (a *app) handleBorrow(ctx context.Context, sc *bufio.Scanner, interactive bool) error {
	bookID, ok := a.ask(sc, interactive, "Book ID: ")
	if !ok {
		return nil
	}
	userID, ok := a.ask(sc, interactive, "User ID: ")
	if !ok {
		return nil
	}
	return a.borrow(ctx, bookID, userID)
}

func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
