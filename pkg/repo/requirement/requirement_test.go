package requirement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeEscaper(t *testing.T) {
	cases := map[string]string{
		"laminate":   "laminate",
		"50%":        `50\%`,
		"roll_2":     `roll\_2`,
		`C:\temp`:    `C:\\temp`,
		`100%_\done`: `100\%\_\\done`,
	}
	for in, want := range cases {
		assert.Equal(t, want, likeEscaper.Replace(in), in)
	}
}
