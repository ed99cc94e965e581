package icbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello there", "hello there"},
		{"wrapped", "<HTML><BODY BGCOLOR=\"#ffffff\">hi</BODY></HTML>", "hi"},
		{"inline break", "line one<BR>line two", "line oneline two"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NormalizeText([]byte(c.in)))
		})
	}
}
