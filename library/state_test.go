package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/kvstore"
)

func seed(t *testing.T, values map[string]string) kvstore.Store {
	t.Helper()
	store := kvstore.NewMemoryStore()
	for k, v := range values {
		require.NoError(t, store.Set(context.Background(), k, []byte(v)))
	}
	return store
}

func TestLoad_EmptyStoreUsesDefaults(t *testing.T) {
	svc := newService(t, kvstore.NewMemoryStore())
	assert.Empty(t, svc.Books())
	assert.Empty(t, svc.Users())
	assert.Equal(t, 1, svc.st.bookIDCounter)
	assert.Equal(t, 1, svc.st.userIDCounter)
}

func TestLoad_UnreadableValuesFallBack(t *testing.T) {
	svc := newService(t, seed(t, map[string]string{
		KeyBooks:         `{"not":"a list"}`,
		KeyUsers:         `garbage`,
		KeyBookIDCounter: `"seven"`,
		KeyUserIDCounter: `-3`,
	}))
	assert.Empty(t, svc.Books())
	assert.Empty(t, svc.Users())
	assert.Equal(t, 1, svc.st.bookIDCounter)
	assert.Equal(t, 1, svc.st.userIDCounter)
}

func TestLoad_DropsMalformedRecords(t *testing.T) {
	svc := newService(t, seed(t, map[string]string{
		KeyBooks: `[
			{"id":"1","title":"Dune","author":"Herbert","year":1965,"isBorrowed":false,"borrowedBy":null},
			{"id":"","title":"No id","author":"x","year":1},
			{"id":"2","title":"","author":"x","year":1},
			{"id":"1","title":"Duplicate","author":"x","year":1},
			{"id":"3","title":"Bad year","author":"x","year":"soon"},
			42,
			{"id":4,"title":"Numeric id","author":"y","year":2001}
		]`,
		KeyUsers: `[
			{"id":"1","name":"Ann","email":"ann@x.com","borrowedBooks":[]},
			{"id":"2","name":"","email":"nobody@x.com"},
			"junk"
		]`,
	}))

	books := svc.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "4", books[1].ID, "numeric ids are coerced to strings")

	users := svc.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)
	assert.NotNil(t, users[0].BorrowedBooks)

	b, err := svc.CreateBook(context.Background(), bookMother(5))
	require.NoError(t, err)
	assert.Equal(t, "5", b.ID, "counter is raised above loaded ids")
}

func TestLoad_ReconcilesLoans(t *testing.T) {
	svc := newService(t, seed(t, map[string]string{
		KeyBooks: `[
			{"id":"1","title":"Kept","author":"a","year":1,"isBorrowed":true,"borrowedBy":"1"},
			{"id":"2","title":"Flag only","author":"a","year":1,"isBorrowed":true,"borrowedBy":null},
			{"id":"3","title":"Ghost borrower","author":"a","year":1,"isBorrowed":true,"borrowedBy":"9"},
			{"id":"4","title":"One-sided","author":"a","year":1,"isBorrowed":true,"borrowedBy":"1"},
			{"id":"5","title":"Missing flag","author":"a","year":1,"isBorrowed":false,"borrowedBy":"2"}
		]`,
		KeyUsers: `[
			{"id":"1","name":"Ann","email":"ann@x.com","borrowedBooks":["1","1","7","2"]},
			{"id":"2","name":"Bob","email":"bob@x.com","borrowedBooks":[5]}
		]`,
		KeyBookIDCounter: `6`,
		KeyUserIDCounter: `3`,
	}))

	byID := map[string]Book{}
	for _, b := range svc.Books() {
		byID[b.ID] = b
	}
	assert.Equal(t, "1", byID["1"].BorrowedBy)
	assert.True(t, byID["1"].IsBorrowed)
	assert.False(t, byID["2"].IsBorrowed)
	assert.False(t, byID["3"].IsBorrowed)
	assert.Empty(t, byID["3"].BorrowedBy)
	assert.False(t, byID["4"].IsBorrowed, "user 1 does not list book 4")
	assert.True(t, byID["5"].IsBorrowed, "isBorrowed follows borrowedBy")

	ann, _ := svc.GetUserByID("1")
	assert.Equal(t, []string{"1"}, ann.BorrowedBooks)
	bob, _ := svc.GetUserByID("2")
	assert.Equal(t, []string{"5"}, bob.BorrowedBooks)

	checkInvariants(t, svc)
}

func TestLoad_CounterNeverBelowExistingIDs(t *testing.T) {
	svc := newService(t, seed(t, map[string]string{
		KeyUsers:         `[{"id":"8","name":"Ann","email":"ann@x.com","borrowedBooks":[]}]`,
		KeyUserIDCounter: `2`,
	}))
	u, err := svc.CreateUser(context.Background(), userMother(1))
	require.NoError(t, err)
	assert.Equal(t, "9", u.ID)
}

type brokenStore struct{ *kvstore.MemoryStore }

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errDiskFull
}

func TestLoad_StoreErrorFailsConstruction(t *testing.T) {
	_, err := NewService(context.Background(), brokenStore{kvstore.NewMemoryStore()}, WithLogger(quietLog))
	require.ErrorIs(t, err, errDiskFull)
}
