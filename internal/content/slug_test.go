package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"Déjà Vu", "deja-vu"},
		{"C++ & Go!", "c-go"},
		{"already-slugged", "already-slugged"},
		{"MixedCASE123", "mixedcase123"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}
