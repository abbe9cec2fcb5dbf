package markup

import (
	"math"
	"strings"
	"testing"

	"github.com/FocuswithJustin/safemarkup/core/errors"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Markup
		args   []any
		want   Markup
	}{
		{"escapes value", "%s", []any{"<x>"}, "&lt;x&gt;"},
		{"markup template", "<b>%s</b>", []any{"&"}, "<b>&amp;</b>"},
		{"markup argument", "%s and %s", []any{"<", Markup("<i>")}, "&lt; and <i>"},
		{"quotes escaped", "<a title=\"%s\">", []any{`"hi"`}, "<a title=\"&#34;hi&#34;\">"},
		{"no directives", "plain <b>text</b>", nil, "plain <b>text</b>"},
		{"literal percent", "100%% <b>done</b>", nil, "100% <b>done</b>"},
		{"percent after directive", "%d%%", []any{50}, "50%"},
		{"nil argument", "[%s]", []any{nil}, "[]"},
		{"htmler argument", "<p>%s</p>", []any{&widget{id: 3}}, `<p><span id="w3"></span></p>`},
		{"float as text", "%s", []any{1.5}, "1.5"},
		{"repr", "%r", []any{"<"}, `<Markup "&lt;">`},
		{"width", "%5s|", []any{"ab"}, "   ab|"},
		{"left justify", "%-5s|", []any{"ab"}, "ab   |"},
		{"zero flag ignored for text", "%05s", []any{"ab"}, "   ab"},
		{"precision truncates", "%.3s", []any{"abcdef"}, "abc"},
		{"integer", "%d items", []any{3}, "3 items"},
		{"i and u", "%i/%u", []any{2, uint8(9)}, "2/9"},
		{"float truncated by d", "%d", []any{3.9}, "3"},
		{"zero padded", "%05d", []any{42}, "00042"},
		{"signed", "%+d", []any{5}, "+5"},
		{"space sign", "% d", []any{5}, " 5"},
		{"left justified int", "%-4d|", []any{7}, "7   |"},
		{"int precision", "%.3d", []any{5}, "005"},
		{"length modifier ignored", "%ld %hd", []any{1, 2}, "1 2"},
		{"hex", "%x %X", []any{255, 255}, "ff FF"},
		{"alternate hex", "%#x", []any{255}, "0xff"},
		{"octal", "%o", []any{8}, "10"},
		{"alternate octal", "%#o", []any{8}, "010"},
		{"alternate octal 255", "%#o", []any{255}, "0377"},
		{"fixed", "%.2f", []any{3.14159}, "3.14"},
		{"fixed default precision", "%f", []any{1.5}, "1.500000"},
		{"upper fixed", "%F", []any{2}, "2.000000"},
		{"exponent", "%e", []any{12345.678}, "1.234568e+04"},
		{"upper exponent", "%.1E", []any{0.5}, "5.0E-01"},
		{"general small", "%g", []any{0.0001}, "0.0001"},
		{"general large", "%g", []any{1e6}, "1e+06"},
		{"general default precision", "%g", []any{3.14159265}, "3.14159"},
		{"star width", "%*d", []any{5, 42}, "   42"},
		{"negative star width", "%*d|", []any{-4, 1}, "1   |"},
		{"star precision", "%.*f", []any{2, 3.14159}, "3.14"},
		{"largest star width", "%*s|", []any{uint64(1_000_000), ""}, Markup(strings.Repeat(" ", 1_000_000) + "|")},
		{"char from int", "%c", []any{65}, "A"},
		{"char escaped", "%c%c", []any{60, "&"}, "&lt;&amp;"},
		{"char from string", "%c", []any{"é"}, "é"},
		{"mapping", "%(a)s|%(b)s", []any{map[string]any{"a": "<", "b": Markup("<b>")}}, "&lt;|<b>"},
		{"mapping reused key", "%(x)s%(x)s", []any{map[string]string{"x": "&"}}, "&amp;&amp;"},
		{"mapping numeric", "%(n)03d", []any{map[string]int{"n": 7}}, "007"},
		{"mapping with literal percent", "%(p)d%%", []any{map[string]any{"p": 10}}, "10%"},
		{"mapping unused keys", "none", []any{map[string]any{"a": 1}}, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.format.Format(tt.args...)
			if err != nil {
				t.Fatalf("Format(%q, %v) error: %v", string(tt.format), tt.args, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q, %v) = %q, want %q", string(tt.format), tt.args, got, tt.want)
			}
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name      string
		format    Markup
		args      []any
		sentinel  error
		wantIndex int
		wantKey   string
		wantMsg   string
	}{
		{"not enough arguments", "%s %s", []any{"a"}, errors.ErrFormat, -1, "", "not enough arguments for format string"},
		{"too many arguments", "%s", []any{"a", "b"}, errors.ErrFormat, -1, "", "not all arguments converted during string formatting"},
		{"arguments without directives", "plain", []any{1}, errors.ErrFormat, -1, "", "not all arguments converted during string formatting"},
		{"key without mapping", "x %(a)s", []any{"v"}, errors.ErrFormat, 2, "", "format requires a mapping"},
		{"missing key", "%(missing)s", []any{map[string]any{"a": 1}}, errors.ErrFormat, -1, "missing", "key not found"},
		{"positional with mapping", "%s", []any{map[string]any{"a": 1}}, errors.ErrFormat, 0, "", "positional directive used with a mapping"},
		{"unsupported verb", "%y", []any{1}, errors.ErrFormat, 1, "", "unsupported format character 'y' (0x79)"},
		{"unsupported verb after width", "ab%5k", []any{1}, errors.ErrFormat, 4, "", "unsupported format character 'k' (0x6b)"},
		{"flags after width", "%5 d", []any{1}, errors.ErrFormat, 2, "", "unsupported format character ' ' (0x20)"},
		{"incomplete", "abc%", nil, errors.ErrFormat, -1, "", "incomplete format"},
		{"incomplete with width", "%5", []any{1}, errors.ErrFormat, -1, "", "incomplete format"},
		{"incomplete key", "%(abc", []any{map[string]any{"abc": 1}}, errors.ErrFormat, 0, "", "incomplete format key"},
		{"star wants int", "%*d", []any{"5", 1}, errors.ErrFormat, 0, "", "* wants int"},
		{"char out of range", "%c", []any{0x110000}, errors.ErrFormat, 0, "", "%c arg not in range(0x110000)"},
		{"star width overflows", "%*s", []any{uint64(1) << 63, "x"}, errors.ErrFormat, 0, "", "width too big"},
		{"negative star width overflows", "x%*s", []any{int64(math.MinInt64), "x"}, errors.ErrFormat, 1, "", "width too big"},
		{"star precision overflows", "%.*f", []any{int64(1) << 40, 1.5}, errors.ErrFormat, 0, "", "precision too big"},
		{"literal width too big", "%1000001d", []any{1}, errors.ErrFormat, 0, "", "width too big"},
		{"literal width overflows int", "%99999999999999999999s", []any{"x"}, errors.ErrFormat, 0, "", "width too big"},
		{"literal precision too big", "%.2000000f", []any{1.5}, errors.ErrFormat, 0, "", "precision too big"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.format.Format(tt.args...)
			if err == nil {
				t.Fatalf("Format(%q) expected error", string(tt.format))
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Format(%q) error = %v, want %v", string(tt.format), err, tt.sentinel)
			}
			var fe *errors.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Format(%q) error = %T, want *errors.FormatError", string(tt.format), err)
			}
			if fe.Index != tt.wantIndex || fe.Key != tt.wantKey || fe.Message != tt.wantMsg {
				t.Errorf("Format(%q) error = {Index:%d Key:%q Message:%q}, want {Index:%d Key:%q Message:%q}",
					string(tt.format), fe.Index, fe.Key, fe.Message, tt.wantIndex, tt.wantKey, tt.wantMsg)
			}
		})
	}
}

func TestFormatUnsupportedCharacter(t *testing.T) {
	for _, format := range []Markup{"%y", "ab%5k", "%5 d"} {
		_, err := format.Format(1)
		if !errors.Is(err, errors.ErrFormat) || !errors.Is(err, errors.ErrUnsupported) {
			t.Errorf("Format(%q) error = %v, want ErrFormat and ErrUnsupported", string(format), err)
		}
		var ue *errors.UnsupportedError
		if !errors.As(err, &ue) || ue.Feature != "format character" {
			t.Errorf("Format(%q) error = %v, want *errors.UnsupportedError for a format character", string(format), err)
		}
	}

	_, err := Markup("abc%").Format()
	if errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("incomplete format reported as unsupported: %v", err)
	}
}

func TestFormatTypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Markup
		args   []any
	}{
		{"unconvertible text", "%s", []any{struct{}{}}},
		{"number verb with string", "%d", []any{"5"}},
		{"hex verb with float", "%x", []any{1.5}},
		{"float verb with string", "%f", []any{"1.5"}},
		{"char verb with long string", "%c", []any{"ab"}},
		{"char verb with float", "%c", []any{1.5}},
		{"mapping value unconvertible", "%(a)s", []any{map[string]any{"a": []int{1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.format.Format(tt.args...)
			if !errors.Is(err, errors.ErrType) {
				t.Errorf("Format(%q, %v) error = %v, want ErrType", string(tt.format), tt.args, err)
			}
		})
	}
}

func TestFormatDoesNotModifyReceiver(t *testing.T) {
	m := Markup("<p>%s</p>")
	if _, err := m.Format("<x>"); err != nil {
		t.Fatal(err)
	}
	if m != "<p>%s</p>" {
		t.Errorf("receiver changed to %q", m)
	}
}
