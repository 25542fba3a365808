package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "reglamento", want: "%reglamento%"},
		{term: "100%", want: `%100\%%`},
		{term: "res_045", want: `%res\_045%`},
		{term: `a\b`, want: `%a\\b%`},
		{term: "", want: "%%"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPattern(tt.term))
		})
	}
}
