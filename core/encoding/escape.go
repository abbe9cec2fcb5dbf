// Package encoding provides the text escaping primitives behind markup values.
package encoding

import "strings"

// Entity references produced by EscapeMarkup. The quote uses the numeric
// form so the output is valid in both HTML and XML.
const (
	AmpEntity  = "&amp;"
	LtEntity   = "&lt;"
	GtEntity   = "&gt;"
	QuotEntity = "&#34;"
)

// EscapedLen reports the length in bytes that EscapeMarkup(s, quotes) will
// produce and the number of characters it substitutes.
func EscapedLen(s string, quotes bool) (size, count int) {
	size = len(s)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			size += len(AmpEntity) - 1
			count++
		case '<':
			size += len(LtEntity) - 1
			count++
		case '>':
			size += len(GtEntity) - 1
			count++
		case '"':
			if quotes {
				size += len(QuotEntity) - 1
				count++
			}
		}
	}
	return size, count
}

// EscapeMarkup replaces &, < and > with entity references, and " as well
// when quotes is true.
//
// The input is measured first; when nothing needs escaping s itself is
// returned without allocating. Otherwise the output buffer is allocated once
// at its final size. The special characters are ASCII, which never appears
// inside a multi-byte UTF-8 sequence, so scanning bytes cannot split a code
// point.
func EscapeMarkup(s string, quotes bool) string {
	size, count := EscapedLen(s, quotes)
	if count == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(size)
	last, done := 0, 0
	for i := 0; i < len(s) && done < count; i++ {
		var ent string
		switch s[i] {
		case '&':
			ent = AmpEntity
		case '<':
			ent = LtEntity
		case '>':
			ent = GtEntity
		case '"':
			if !quotes {
				continue
			}
			ent = QuotEntity
		default:
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(ent)
		last = i + 1
		done++
	}
	// everything after the final substitution is copied in one step
	b.WriteString(s[last:])
	return b.String()
}

// UnescapeMarkup reverses EscapeMarkup. The replacements run in a fixed
// order with &amp; last, so "&amp;lt;" becomes "&lt;" and not "<".
func UnescapeMarkup(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, QuotEntity, `"`)
	s = strings.ReplaceAll(s, GtEntity, ">")
	s = strings.ReplaceAll(s, LtEntity, "<")
	s = strings.ReplaceAll(s, AmpEntity, "&")
	return s
}
