// Package entities removes character references and tags from markup text.
//
// Both operations scan the input with a participle lexer whose rules cover
// every byte, so they are total over any string.
package entities

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/net/html"
)

// referenceLexer splits text into character references, entity references
// and the runs between them. A lone '&' that starts no reference is its own
// token.
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "CharRef", Pattern: `&#(?:[0-9]+|[xX][0-9a-fA-F]+);?`},
	{Name: "EntityRef", Pattern: `&\w+;`},
	{Name: "Text", Pattern: `[^&]+`},
	{Name: "Amp", Pattern: `&`},
})

// tagLexer splits text into comments, tags and the runs between them.
// Comments do not span lines; a multi-line comment is removed up to its
// first '>' as an ordinary tag.
var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `<!--.*?-->`},
	{Name: "Tag", Pattern: `<[^>]*>`},
	{Name: "Text", Pattern: `[^<]+`},
	{Name: "Lt", Pattern: `<`},
})

var (
	charRefToken   = referenceLexer.Symbols()["CharRef"]
	entityRefToken = referenceLexer.Symbols()["EntityRef"]
	commentToken   = tagLexer.Symbols()["Comment"]
	tagToken       = tagLexer.Symbols()["Tag"]
)

// xmlEntities are the references every XML parser understands without a DTD.
var xmlEntities = map[string]bool{
	"amp":  true,
	"apos": true,
	"gt":   true,
	"lt":   true,
	"quot": true,
}

// StripEntities returns a copy of text with character and entity references
// replaced by the characters they stand for.
//
// Numeric references (&#106; &#x6a;, with or without the closing semicolon)
// are always decoded; code points outside Unicode decode to U+FFFD. Named
// references are looked up in the HTML5 table. When keepXMLEntities is true
// the five XML entities (&amp; &apos; &gt; &lt; &quot;) are left alone and an
// unknown name is re-escaped as "&amp;name;"; otherwise an unknown name is
// replaced by the bare name.
func StripEntities(text string, keepXMLEntities bool) string {
	if strings.IndexByte(text, '&') < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	scan(referenceLexer, text, func(tok lexer.Token) {
		switch tok.Type {
		case charRefToken:
			b.WriteString(decodeCharRef(tok.Value))
		case entityRefToken:
			b.WriteString(decodeEntityRef(tok.Value, keepXMLEntities))
		default:
			b.WriteString(tok.Value)
		}
	})
	return b.String()
}

// StripTags returns a copy of text with all XML/HTML tags and single-line
// comments removed.
func StripTags(text string) string {
	if strings.IndexByte(text, '<') < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	scan(tagLexer, text, func(tok lexer.Token) {
		if tok.Type == commentToken || tok.Type == tagToken {
			return
		}
		b.WriteString(tok.Value)
	})
	return b.String()
}

// scan feeds every token of text to emit. The lexers used here have a
// catch-all rule, so Next only fails on a broken definition; the remaining
// input is then emitted verbatim.
func scan(def *lexer.StatefulDefinition, text string, emit func(lexer.Token)) {
	lex, err := def.LexString("", text)
	if err != nil {
		emit(lexer.Token{Value: text})
		return
	}
	consumed := 0
	for {
		tok, err := lex.Next()
		if err != nil {
			emit(lexer.Token{Value: text[consumed:]})
			return
		}
		if tok.EOF() {
			return
		}
		consumed = tok.Pos.Offset + len(tok.Value)
		emit(tok)
	}
}

// decodeCharRef decodes "&#NNN;" or "&#xHHH;" (the semicolon is optional).
func decodeCharRef(ref string) string {
	body := strings.TrimSuffix(ref[2:], ";")
	var (
		n   uint64
		err error
	)
	if body[0] == 'x' || body[0] == 'X' {
		n, err = strconv.ParseUint(body[1:], 16, 32)
	} else {
		n, err = strconv.ParseUint(body, 10, 32)
	}
	if err != nil || n > unicode.MaxRune || (n >= 0xD800 && n <= 0xDFFF) {
		return string(utf8.RuneError)
	}
	return string(rune(n))
}

// decodeEntityRef decodes "&name;".
func decodeEntityRef(ref string, keepXMLEntities bool) string {
	name := ref[1 : len(ref)-1]
	if keepXMLEntities && xmlEntities[name] {
		return ref
	}
	// A full match decodes to one or two code points. Anything longer is
	// html's prefix match of a legacy entity ("&ampfoo;" -> "&foo;"), which
	// is not a reference to a known name.
	if decoded := html.UnescapeString(ref); decoded != ref && utf8.RuneCountInString(decoded) <= 2 {
		return decoded
	}
	if keepXMLEntities {
		return "&amp;" + name + ";"
	}
	return name
}
