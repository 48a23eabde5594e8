package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitleAndAuthor(t *testing.T) {
	assert.Empty(t, ValidateTitle("Dune"))
	assert.NotEmpty(t, ValidateTitle("   "))
	assert.Empty(t, ValidateAuthor("Herbert"))
	assert.NotEmpty(t, ValidateAuthor(""))
}

func TestParseYear(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	tests := []struct {
		in      string
		want    int
		wantMsg bool
	}{
		{in: "1965", want: 1965},
		{in: " 2026 ", want: 2026},
		{in: "-4000", want: -4000},
		{in: "2027", wantMsg: true},
		{in: "-4001", wantMsg: true},
		{in: "19x5", wantMsg: true},
		{in: "", wantMsg: true},
	}
	for _, tt := range tests {
		got, msg := ParseYear(tt.in)
		if tt.wantMsg {
			assert.NotEmpty(t, msg, "input %q", tt.in)
			assert.Equal(t, msg, ValidateYear(tt.in))
			continue
		}
		assert.Empty(t, msg, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.Empty(t, ValidateEmail("ann@x.com"))
	assert.Empty(t, ValidateEmail(" ann@example.org "))
	for _, bad := range []string{"", "ann", "ann@", "@x.com", "ann x@x.com"} {
		assert.NotEmpty(t, ValidateEmail(bad), bad)
	}
}

func TestValidateNameAndID(t *testing.T) {
	assert.Empty(t, ValidateName("Ann"))
	assert.NotEmpty(t, ValidateName(" "))

	assert.Empty(t, ValidateID("12"))
	assert.NotEmpty(t, ValidateID(""))
	assert.NotEmpty(t, ValidateID("1a"))
	assert.NotEmpty(t, ValidateID("-1"))
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "b", First("", "b", "c"))
	assert.Empty(t, First("", ""))
}
