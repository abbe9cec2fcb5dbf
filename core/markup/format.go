package markup

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/safemarkup/core/errors"
)

// formatLexer tokenizes percent-style format strings. A '%' switches to the
// Directive state, which ends with the conversion character.
var formatLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Escaped", Pattern: `%%`},
		{Name: "Percent", Pattern: `%`, Action: lexer.Push("Directive")},
		{Name: "Text", Pattern: `[^%]+`},
	},
	"Directive": {
		{Name: "Key", Pattern: `\([^)]*\)`},
		{Name: "Flags", Pattern: `[#0\- +]+`},
		{Name: "Width", Pattern: `\*|[0-9]+`},
		{Name: "Precision", Pattern: `\.(?:\*|[0-9]*)`},
		{Name: "Length", Pattern: `[hlL]`},
		{Name: "Verb", Pattern: `(?s:.)`, Action: lexer.Pop()},
	},
})

//nolint:govet // participle grammar tags are not standard struct tags
type formatTemplate struct {
	Parts []*formatPart `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type formatPart struct {
	Pos lexer.Position

	Text      *string          `parser:"  @Text"`
	Escaped   bool             `parser:"| @Escaped"`
	Directive *formatDirective `parser:"| Percent @@"`
}

// formatDirective is a conversion specification:
// %[(key)][flags][width][.precision][length]verb
//
//nolint:govet // participle grammar tags are not standard struct tags
type formatDirective struct {
	Key       *string `parser:"@Key?"`
	Flags     string  `parser:"@Flags?"`
	Width     string  `parser:"@Width?"`
	Precision *string `parser:"@Precision?"`
	Length    string  `parser:"@Length?"`
	Verb      string  `parser:"@Verb"`
}

var formatParser = participle.MustBuild[formatTemplate](
	participle.Lexer(formatLexer),
)

// maxWidth bounds widths and precisions. fmt refuses anything larger.
const maxWidth = 1_000_000

// Format interpolates args into m, which is used as a percent-style format
// string, and returns the result as Markup. Every argument is escaped
// before it is inserted; the format string itself is trusted.
//
// A single map argument with string keys switches to mapping mode, where
// each directive names its value: %(name)s. Otherwise the arguments are
// consumed in order. Supported conversions are s and r (text and Repr),
// d i u o x X e E f F g G for numbers and c for a single character.
// Argument count mismatches and malformed directives return a
// *errors.FormatError.
//
//	Markup("<b>%s</b>").Format("&") // <b>&amp;</b>
//	Markup("%(a)s & %(b)d").Format(map[string]any{"a": "<", "b": 2}) // &lt; & 2
func (m Markup) Format(args ...any) (Markup, error) {
	tmpl, err := parseFormat(string(m))
	if err != nil {
		return "", err
	}
	return tmpl.execute(len(m), args)
}

// execute renders the parsed template with args. sizeHint is the length of
// the format string.
func (t *formatTemplate) execute(sizeHint int, args []any) (Markup, error) {
	fa := &formatArgs{positional: args}
	if len(args) == 1 {
		if rv := reflect.ValueOf(args[0]); rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			fa.mapping = rv
			fa.positional = nil
		}
	}

	var b strings.Builder
	b.Grow(sizeHint)
	for _, part := range t.Parts {
		switch {
		case part.Text != nil:
			b.WriteString(*part.Text)
		case part.Escaped:
			b.WriteByte('%')
		case part.Directive != nil:
			s, err := fa.render(part.Pos.Offset, part.Directive)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}

	if !fa.mapping.IsValid() && fa.next < len(fa.positional) {
		return "", errors.NewFormat(-1, "not all arguments converted during string formatting")
	}
	return Markup(b.String()), nil
}

// parseFormat parses a format string and maps parser failures to
// *errors.FormatError.
func parseFormat(format string) (*formatTemplate, error) {
	tmpl, err := formatParser.ParseString("", format)
	if err == nil {
		return tmpl, nil
	}
	var perr participle.Error
	if !errors.As(err, &perr) {
		return nil, errors.Wrap(err, "format")
	}
	offset := perr.Position().Offset
	if offset >= len(format) {
		return nil, &errors.FormatError{Index: -1, Message: "incomplete format", Err: err}
	}
	r, _ := utf8.DecodeRuneInString(format[offset:])
	return nil, unsupportedCharacter(offset, r, err)
}

// unsupportedCharacter reports a conversion character with no meaning.
func unsupportedCharacter(index int, r rune, cause error) *errors.FormatError {
	unsupported := errors.NewUnsupported("format character", strconv.QuoteRune(r))
	unsupported.Err = cause
	return &errors.FormatError{
		Index:   index,
		Message: fmt.Sprintf("unsupported format character %q (%#x)", r, r),
		Err:     unsupported,
	}
}

type formatArgs struct {
	positional []any
	next       int
	mapping    reflect.Value
}

// take returns the next positional argument.
func (a *formatArgs) take(index int) (any, error) {
	if a.mapping.IsValid() {
		return nil, errors.NewFormat(index, "positional directive used with a mapping")
	}
	if a.next >= len(a.positional) {
		return nil, errors.NewFormat(-1, "not enough arguments for format string")
	}
	v := a.positional[a.next]
	a.next++
	return v, nil
}

// lookup returns the mapping value for key.
func (a *formatArgs) lookup(index int, key string) (any, error) {
	if !a.mapping.IsValid() {
		return nil, errors.NewFormat(index, "format requires a mapping")
	}
	v := a.mapping.MapIndex(reflect.ValueOf(key).Convert(a.mapping.Type().Key()))
	if !v.IsValid() {
		return nil, errors.NewFormatKey(key, "key not found")
	}
	return v.Interface(), nil
}

// star consumes a '*' width or precision. what names it in range errors.
func (a *formatArgs) star(index int, what string) (int, error) {
	v, err := a.take(index)
	if err != nil {
		return 0, err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n >= -maxWidth && n <= maxWidth {
			return int(n), nil
		}
		return 0, errors.NewFormat(index, what+" too big")
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n := rv.Uint(); n <= maxWidth {
			return int(n), nil
		}
		return 0, errors.NewFormat(index, what+" too big")
	}
	return 0, errors.NewFormat(index, "* wants int")
}

// checkWidth rejects literal widths and precisions fmt cannot honor.
func checkWidth(index int, digits, what string) error {
	if digits == "" {
		return nil
	}
	if n, err := strconv.Atoi(digits); err != nil || n > maxWidth {
		return errors.NewFormat(index, what+" too big")
	}
	return nil
}

func (a *formatArgs) render(index int, d *formatDirective) (string, error) {
	if d.Verb == "(" {
		return "", errors.NewFormat(index, "incomplete format key")
	}

	flags := d.Flags
	width := d.Width
	if width == "*" {
		w, err := a.star(index, "width")
		if err != nil {
			return "", err
		}
		if w < 0 {
			flags += "-"
			w = -w
		}
		width = strconv.Itoa(w)
	} else if err := checkWidth(index, width, "width"); err != nil {
		return "", err
	}
	precision := ""
	if d.Precision != nil {
		precision = *d.Precision
		if precision == ".*" {
			p, err := a.star(index, "precision")
			if err != nil {
				return "", err
			}
			if p < 0 {
				p = 0
			}
			precision = "." + strconv.Itoa(p)
		} else if err := checkWidth(index, precision[1:], "precision"); err != nil {
			return "", err
		}
	}

	if d.Verb == "%" {
		return "%", nil
	}

	var (
		arg any
		err error
	)
	if d.Key != nil {
		key := strings.TrimSuffix(strings.TrimPrefix(*d.Key, "("), ")")
		arg, err = a.lookup(index, key)
	} else {
		arg, err = a.take(index)
	}
	if err != nil {
		return "", err
	}

	verb := d.Verb
	switch verb {
	case "s", "r":
		escaped, err := Escape(arg, true)
		if err != nil {
			return "", err
		}
		text := string(escaped)
		if verb == "r" {
			text = escaped.Repr()
		}
		return fmt.Sprintf(goSpec(textFlags(flags), width, precision, 's'), text), nil

	case "c":
		r, err := charOf(index, arg)
		if err != nil {
			return "", err
		}
		return string(EscapeString(fmt.Sprintf(goSpec(textFlags(flags), width, "", 'c'), r), true)), nil

	case "d", "i", "u":
		n, ok := integerOf(arg, true)
		if !ok {
			return "", errors.NewType("format", arg, "%"+verb+" format: a number is required")
		}
		return fmt.Sprintf(goSpec(flags, width, precision, 'd'), n), nil

	case "o", "x", "X":
		n, ok := integerOf(arg, false)
		if !ok {
			return "", errors.NewType("format", arg, "%"+verb+" format: an integer is required")
		}
		return fmt.Sprintf(goSpec(flags, width, precision, rune(verb[0])), n), nil

	case "e", "E", "f", "F", "g", "G":
		f, ok := floatOf(arg)
		if !ok {
			return "", errors.NewType("format", arg, "%"+verb+" format: a real number is required")
		}
		if precision == "" {
			precision = ".6"
		}
		return fmt.Sprintf(goSpec(flags, width, precision, rune(verb[0])), f), nil
	}

	r, _ := utf8.DecodeRuneInString(verb)
	return "", unsupportedCharacter(index+len(d.raw())-len(verb), r, nil)
}

// raw rebuilds the directive text following the '%'.
func (d *formatDirective) raw() string {
	var b strings.Builder
	b.WriteByte('%')
	if d.Key != nil {
		b.WriteString(*d.Key)
	}
	b.WriteString(d.Flags)
	b.WriteString(d.Width)
	if d.Precision != nil {
		b.WriteString(*d.Precision)
	}
	b.WriteString(d.Length)
	b.WriteString(d.Verb)
	return b.String()
}

// goSpec assembles a fmt verb from directive parts.
func goSpec(flags, width, precision string, verb rune) string {
	var b strings.Builder
	b.WriteByte('%')
	b.WriteString(flags)
	b.WriteString(width)
	b.WriteString(precision)
	b.WriteRune(verb)
	return b.String()
}

// textFlags keeps the flags that apply to text conversions. Zero padding
// and sign flags are numeric only.
func textFlags(flags string) string {
	if strings.Contains(flags, "-") {
		return "-"
	}
	return ""
}

// integerOf returns v as an integer. Floats are truncated when
// allowFloat is set.
func integerOf(v any, allowFloat bool) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		if allowFloat {
			return int64(rv.Float()), true
		}
	}
	return nil, false
}

func floatOf(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// charOf returns the character for a %c conversion: an integer code point
// or a one-character string.
func charOf(index int, v any) (rune, error) {
	if n, ok := integerOf(v, false); ok {
		var cp int64
		switch n := n.(type) {
		case int64:
			cp = n
		case uint64:
			if n > utf8.MaxRune {
				cp = -1
			} else {
				cp = int64(n)
			}
		}
		if cp < 0 || cp > utf8.MaxRune {
			return 0, errors.NewFormat(index, "%c arg not in range(0x110000)")
		}
		return rune(cp), nil
	}
	if isNumber(v) {
		return 0, errors.NewType("format", v, "%c requires int or char")
	}
	s, err := textOf("format", v)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.NewType("format", v, "%c requires int or char")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
