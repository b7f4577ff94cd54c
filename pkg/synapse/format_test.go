package synapse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type reportID int

func (r reportID) FormatSpec(spec string) string {
	if spec == "hex" {
		return "0x" + PathValue(int(r), "x")
	}
	return PathValue(int(r), "")
}

type color string

func (c color) String() string { return "color:" + string(c) }

func TestFormatValue(t *testing.T) {
	n := 5
	var nilInt *int
	day := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		value  any
		spec   string
		want   string
		wantOK bool
	}{
		{"nil", nil, "", "", false},
		{"nil pointer", nilInt, "", "", false},
		{"pointer", &n, "", "5", true},
		{"string", "ada", "", "ada", true},
		{"empty string", "", "", "", true},
		{"int", 42, "", "42", true},
		{"bool", true, "", "true", true},
		{"fmt verb without percent", 7, "04d", "0007", true},
		{"fmt verb with percent", 255, "%x", "ff", true},
		{"float precision", 3.14159, ".2f", "3.14", true},
		{"time default", day, "", "2024-03-09T10:30:00Z", true},
		{"time layout", day, "2006-01-02", "2024-03-09", true},
		{"stringer", color("red"), "", "color:red", true},
		{"spec formatter", reportID(255), "hex", "0xff", true},
		{"bytes", []byte("raw"), "", "raw", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FormatValue(tc.value, tc.spec)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPathValue_Escapes(t *testing.T) {
	assert.Equal(t, "a%2Fb%20c", PathValue("a/b c", ""))
	assert.Equal(t, "", PathValue(nil, ""))
}

func TestOr(t *testing.T) {
	type pageSize int

	assert.Equal(t, 20, Or(0, 20))
	assert.Equal(t, 5, Or(5, 20))
	assert.Equal(t, "asc", Or("", "asc"))
	assert.Equal(t, pageSize(50), Or(pageSize(0), 50))
}
