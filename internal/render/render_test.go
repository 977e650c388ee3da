package render

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type codeErr struct{ code string }

func (e *codeErr) Error() string { return "code " + e.code }

type label struct{ text string }

func (l *label) String() string { return l.text }

type brokenLabel struct{}

func (brokenLabel) String() string { panic("no label") }

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"string", "abc", `"abc"`},
		{"int", 13, "13"},
		{"regexp", regexp.MustCompile(`a+b`), "/a+b/"},
		{"error", errors.New("boom"), `*errors.errorString("boom")`},
		{"map", map[string]int{"a": 13}, `map[string]int{"a":13}`},
		{"nil pointer", (*int)(nil), "(*int)(nil)"},
		{"nil error pointer", (*codeErr)(nil), "(*render.codeErr)(nil)"},
		{"nil stringer pointer", (*label)(nil), "(*render.label)(nil)"},
		{"error pointer", &codeErr{code: "E1"}, `*render.codeErr("code E1")`},
		{"stringer pointer", &label{text: "hi"}, "hi"},
		{"panicking stringer", brokenLabel{}, "PANIC=no label"},
		{"nil regexp", (*regexp.Regexp)(nil), "(*regexp.Regexp)(nil)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.in))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, `"a"`, Key("a"))
	assert.Equal(t, "3", Key(3))
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("x", MaxValueLength)
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("x", MaxValueLength+5)
	got := Truncate(long)
	assert.True(t, strings.HasPrefix(got, short))
	assert.True(t, strings.HasSuffix(got, "(truncated 5 chars)"))
}

func TestTruncateKeepsRunes(t *testing.T) {
	// "é" is two bytes, so byte MaxValueLength falls inside a rune.
	s := "x" + strings.Repeat("é", MaxValueLength)
	got := Truncate(s)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, "x"+strings.Repeat("é", (MaxValueLength-1)/2)+"..."))
	assert.True(t, strings.HasSuffix(got, "(truncated 101 chars)"))
}

func TestJoinOr(t *testing.T) {
	assert.Equal(t, "", JoinOr(nil))
	assert.Equal(t, "string", JoinOr([]string{"string"}))
	assert.Equal(t, "map or struct", JoinOr([]string{"map", "struct"}))
	assert.Equal(t, "map, struct, or slice", JoinOr([]string{"map", "struct", "slice"}))
}
