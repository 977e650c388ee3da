// Package render formats values for assertion labels and diagnostic details.
package render

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxValueLength caps the rendered length of a single value.
const MaxValueLength = 200

// Value renders v the way it appears inside a failure label.
// Strings are quoted, nil is "nil", regexps are /pattern/ and everything else
// uses %v, or the Go-syntax %#v form for composite values.
func Value(v any) string {
	return Truncate(value(v))
}

func value(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return fmt.Sprintf("(%T)(nil)", v)
	}

	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case *regexp.Regexp:
		return "/" + x.String() + "/"
	case error:
		msg, ok := call(x.Error)
		if !ok {
			return fmt.Sprintf("%T(%s)", x, msg)
		}
		return fmt.Sprintf("%T(%q)", x, msg)
	case fmt.Stringer:
		msg, _ := call(x.String)
		return msg
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return fmt.Sprintf("%#v", v)
	case reflect.Pointer:
		return fmt.Sprintf("&%s", value(rv.Elem().Interface()))
	case reflect.Func:
		if rv.IsNil() {
			return fmt.Sprintf("(%T)(nil)", v)
		}
		return fmt.Sprintf("%T", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// call runs an Error or String method, turning a panic into a
// "PANIC=..." marker the way fmt does.
func call(method func() string) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("PANIC=%v", r)
			ok = false
		}
	}()
	return method(), true
}

// Key renders a property key: string keys are quoted, others use %v.
func Key(key any) string {
	if s, ok := key.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", key)
}

// Truncate shortens s to at most MaxValueLength bytes, cutting on a rune
// boundary and noting how many runes were dropped.
func Truncate(s string) string {
	if len(s) <= MaxValueLength {
		return s
	}
	cut := MaxValueLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	dropped := utf8.RuneCountInString(s[cut:])
	return s[:cut] + "... (truncated " + strconv.Itoa(dropped) + " chars)"
}

// JoinOr joins words as an alternative: "a", "a or b", "a, b, or c".
func JoinOr(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " or " + words[1]
	default:
		return strings.Join(words[:len(words)-1], ", ") + ", or " + words[len(words)-1]
	}
}
