package markup

import "html/template"

// FuncMap returns html/template functions built on Markup. Functions that
// produce markup return template.HTML so the template engine emits their
// output as-is.
//
// stripTags and stripEntities trust only Markup and template.HTML values.
// Anything else is escaped first, so tags in plain data survive as text.
// Decoding character references in trusted markup can produce '<' or '&';
// the result is trusted exactly as far as its input was.
//
//	escape         Escape(v, true)
//	escapeNoQuotes Escape(v, false)
//	markupJoin     Markup(sep).Join(items, true)
//	markupFormat   Markup(format).Format(args...)
//	stripTags      trusted(v).StripTags()
//	stripEntities  trusted(v).StripEntities(true)
//	unescape       Unescape(v)
//
// Each call returns functions with their own Formatter, so parsed format
// strings are shared only by templates using the same FuncMap.
func FuncMap() template.FuncMap {
	formatter := NewFormatter(0)
	return template.FuncMap{
		"escape": func(v any) (template.HTML, error) {
			m, err := Escape(v, true)
			return m.TemplateHTML(), err
		},
		"escapeNoQuotes": func(v any) (template.HTML, error) {
			m, err := Escape(v, false)
			return m.TemplateHTML(), err
		},
		"markupJoin": func(sep string, items any) (template.HTML, error) {
			m, err := Markup(sep).Join(items, true)
			return m.TemplateHTML(), err
		},
		"markupFormat": func(format string, args ...any) (template.HTML, error) {
			m, err := formatter.Format(Markup(format), args...)
			return m.TemplateHTML(), err
		},
		"stripTags": func(v any) (template.HTML, error) {
			m, err := trusted(v)
			return m.StripTags().TemplateHTML(), err
		},
		"stripEntities": func(v any) (template.HTML, error) {
			m, err := trusted(v)
			return m.StripEntities(true).TemplateHTML(), err
		},
		"unescape": Unescape,
	}
}

// trusted returns v as Markup when the caller already vouched for it, and
// its escaped text otherwise.
func trusted(v any) (Markup, error) {
	if h, ok := v.(template.HTML); ok {
		return Markup(h), nil
	}
	return Escape(v, true)
}
