package main

import (
	"fmt"
	"strings"

	"library-lending/library"
)

func (a *app) printBooks(books []library.Book) {
	fmt.Fprintf(a.out, "%-5s %-30s %-25s %-6s %-10s %s\n", "ID", "Title", "Author", "Year", "Available", "Borrower")
	fmt.Fprintln(a.out, strings.Repeat("-", 100))

	for _, b := range books {
		availStr := "Yes"
		borrowerInfo := "None"
		if b.IsBorrowed {
			availStr = "No"
			if user, err := a.svc.GetUserByID(b.BorrowedBy); err == nil {
				borrowerInfo = fmt.Sprintf("%s (ID: %s)", user.Name, user.ID)
			} else {
				borrowerInfo = fmt.Sprintf("ID: %s", b.BorrowedBy)
			}
		}

		fmt.Fprintf(a.out, "%-5s %-30s %-25s %-6d %-10s %s\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.Year,
			availStr,
			truncateString(borrowerInfo, 30))
	}
}

func (a *app) printUsers(users []library.User) {
	fmt.Fprintf(a.out, "%-5s %-25s %-30s %s\n", "ID", "Name", "Email", "Borrowed")
	fmt.Fprintln(a.out, strings.Repeat("-", 80))

	for _, u := range users {
		borrowed := "None"
		if len(u.BorrowedBooks) > 0 {
			borrowed = strings.Join(u.BorrowedBooks, ", ")
		}
		fmt.Fprintf(a.out, "%-5s %-25s %-30s %s\n",
			u.ID,
			truncateString(u.Name, 25),
			truncateString(u.Email, 30),
			borrowed)
	}
}

// truncateString shortens s to at most maxLength runes, ending in "...".
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
