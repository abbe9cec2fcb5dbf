// Package markup provides Markup, a string type for text that is already
// safe to include in HTML or XML output, and the escaping operations that
// produce it.
//
// A Markup value is a trust marker: whoever creates one by conversion,
// Markup("<b>bold</b>"), vouches that the text can be emitted literally.
// Untrusted values become Markup through Escape. Every operation that
// combines Markup with other values escapes the non-Markup operands first
// and returns a new value; Markup values are never modified.
package markup

import (
	"fmt"
	"html/template"
	"reflect"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/safemarkup/core/encoding"
	"github.com/FocuswithJustin/safemarkup/core/entities"
	"github.com/FocuswithJustin/safemarkup/core/errors"
)

// Markup is text that is safe for inclusion in HTML/XML output without
// further escaping.
type Markup string

// HTMLer is implemented by values that can render themselves as markup.
// Escape uses the result as-is instead of escaping the value's text.
type HTMLer interface {
	HTML() Markup
}

// Escape returns v as Markup, escaping &, < and > (and " when quotes is
// true) in its text.
//
// Markup values are returned unchanged, HTMLer values are rendered with
// their HTML method and html/template.HTML values are trusted as they are.
// Anything else is converted to text first: strings, byte and rune slices,
// fmt.Stringer, error, booleans and numbers are accepted; nil and nil
// pointers give empty markup. Other values produce a *errors.TypeError.
func Escape(v any, quotes bool) (Markup, error) {
	switch v := v.(type) {
	case Markup:
		return v, nil
	case string:
		return EscapeString(v, quotes), nil
	case template.HTML:
		return Markup(v), nil
	}
	if isNil(v) {
		return "", nil
	}
	if h, ok := v.(HTMLer); ok {
		return h.HTML(), nil
	}
	s, err := textOf("escape", v)
	if err != nil {
		return "", err
	}
	return EscapeString(s, quotes), nil
}

// EscapeString escapes s. Unlike Escape it cannot fail.
//
//	EscapeString(`"1 < 2"`, true)  // &#34;1 &lt; 2&#34;
//	EscapeString(`"1 < 2"`, false) // "1 &lt; 2"
func EscapeString(s string, quotes bool) Markup {
	return Markup(encoding.EscapeMarkup(s, quotes))
}

// MustEscape is like Escape but panics if v cannot be converted to text.
func MustEscape(v any, quotes bool) Markup {
	m, err := Escape(v, quotes)
	if err != nil {
		panic(err)
	}
	return m
}

// New creates Markup from v, escaping quotes along with the other special
// characters. Empty values (nil, nil pointers, empty strings and byte
// slices) give empty markup without consulting HTMLer.
func New(v any) (Markup, error) {
	return construct(v, true)
}

// NewNoQuotes is like New but leaves double quotes unescaped.
func NewNoQuotes(v any) (Markup, error) {
	return construct(v, false)
}

func construct(v any, quotes bool) (Markup, error) {
	if isEmpty(v) {
		return "", nil
	}
	return Escape(v, quotes)
}

// Concat returns m followed by other. A non-Markup other is escaped.
func (m Markup) Concat(other any) (Markup, error) {
	o, err := Escape(other, true)
	if err != nil {
		return "", err
	}
	return m + o, nil
}

// Concat concatenates left and right, escaping whichever side is not
// Markup. It is the counterpart of Markup.Concat for a plain left operand:
//
//	Concat("<i>", Markup("<b>")) // &lt;i&gt;<b>
func Concat(left, right any) (Markup, error) {
	l, err := Escape(left, true)
	if err != nil {
		return "", err
	}
	r, err := Escape(right, true)
	if err != nil {
		return "", err
	}
	return l + r, nil
}

// Repeat returns m repeated n times. A count below one gives empty markup.
func (m Markup) Repeat(n int) Markup {
	if n <= 0 || m == "" {
		return ""
	}
	return Markup(strings.Repeat(string(m), n))
}

// Repeat is Markup.Repeat with the count first.
func Repeat(n int, m Markup) Markup {
	return m.Repeat(n)
}

// Join escapes every element of items and joins them with m as the
// separator. items must be a slice, an array or a string (joined per
// character); anything else produces a *errors.TypeError.
func (m Markup) Join(items any, escapeQuotes bool) (Markup, error) {
	switch items := items.(type) {
	case []Markup:
		return join(m, items), nil
	case []string:
		parts := make([]Markup, len(items))
		for i, s := range items {
			parts[i] = EscapeString(s, escapeQuotes)
		}
		return join(m, parts), nil
	}

	rv := reflect.ValueOf(items)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]Markup, rv.Len())
		for i := range parts {
			p, err := Escape(rv.Index(i).Interface(), escapeQuotes)
			if err != nil {
				return "", errors.Wrapf(err, "join: element %d", i)
			}
			parts[i] = p
		}
		return join(m, parts), nil
	case reflect.String:
		var parts []Markup
		for _, r := range rv.String() {
			parts = append(parts, EscapeString(string(r), escapeQuotes))
		}
		return join(m, parts), nil
	default:
		return "", errors.NewType("join", items, "argument is not a sequence")
	}
}

// JoinStrings joins items with m as the separator, escaping each item
// including its quotes.
func (m Markup) JoinStrings(items []string) Markup {
	parts := make([]Markup, len(items))
	for i, s := range items {
		parts[i] = EscapeString(s, true)
	}
	return join(m, parts)
}

func join(sep Markup, parts []Markup) Markup {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	n := len(sep) * (len(parts) - 1)
	for _, p := range parts {
		n += len(p)
	}
	var b strings.Builder
	b.Grow(n)
	b.WriteString(string(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(string(sep))
		b.WriteString(string(p))
	}
	return Markup(b.String())
}

// Unescape reverses the escaping done by Escape and returns plain text.
// &#34;, &gt;, &lt; and &amp; are replaced in that order.
func (m Markup) Unescape() string {
	return encoding.UnescapeMarkup(string(m))
}

// Unescape returns the plain text of v: Markup is unescaped, any other
// value is returned as its text without changes.
func Unescape(v any) string {
	if m, ok := v.(Markup); ok {
		return m.Unescape()
	}
	s, err := textOf("unescape", v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// StripEntities returns a copy of m with character and entity references
// replaced by the characters they stand for. With keepXMLEntities the five
// XML entities (&amp; &apos; &gt; &lt; &quot;) are kept.
func (m Markup) StripEntities(keepXMLEntities bool) Markup {
	return Markup(entities.StripEntities(string(m), keepXMLEntities))
}

// StripTags returns a copy of m with all XML/HTML tags removed.
func (m Markup) StripTags() Markup {
	return Markup(entities.StripTags(string(m)))
}

// HTML returns m. It makes Markup an HTMLer.
func (m Markup) HTML() Markup {
	return m
}

// TemplateHTML returns m as html/template.HTML, which html/template
// emits without escaping.
func (m Markup) TemplateHTML() template.HTML {
	return template.HTML(m)
}

// String returns the text of m.
func (m Markup) String() string {
	return string(m)
}

// Repr returns a debugging representation such as <Markup "1 &lt; 2">.
func (m Markup) Repr() string {
	return "<Markup " + strconv.Quote(string(m)) + ">"
}

// GoString implements fmt.GoStringer so %#v prints Repr.
func (m Markup) GoString() string {
	return m.Repr()
}

// Compare compares m and other as text.
func (m Markup) Compare(other Markup) int {
	return strings.Compare(string(m), string(other))
}

// Len returns the length of m in bytes.
func (m Markup) Len() int {
	return len(m)
}

// IsEmpty reports whether m has no text.
func (m Markup) IsEmpty() bool {
	return m == ""
}
