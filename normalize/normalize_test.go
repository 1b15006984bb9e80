package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t  ", want: ""},
		{name: "inner newlines", in: "Department of\n  Health", want: "Department of Health"},
		{name: "leading and trailing", in: "  RFQ 12/2024\n", want: "RFQ 12/2024"},
		{name: "already clean", in: "Pretoria", want: "Pretoria"},
		{name: "tabs and doubles", in: "a\t\tb  c", want: "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
