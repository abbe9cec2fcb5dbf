package markup

import (
	"github.com/FocuswithJustin/safemarkup/core/cache"
)

// Formatter formats markup templates like Markup.Format, keeping the most
// recently used templates parsed. It is safe for concurrent use.
type Formatter struct {
	templates cache.Cache[string, *formatTemplate]
}

// NewFormatter returns a Formatter that keeps up to size parsed templates.
// A size of zero or less uses cache.DefaultConfig.
func NewFormatter(size int) *Formatter {
	config := cache.DefaultConfig()
	if size > 0 {
		config.MaxSize = size
	}
	return &Formatter{templates: cache.NewLRUCache[string, *formatTemplate](config)}
}

// Format interpolates args into format. See Markup.Format.
func (f *Formatter) Format(format Markup, args ...any) (Markup, error) {
	tmpl, ok := f.templates.Get(string(format))
	if !ok {
		var err error
		if tmpl, err = parseFormat(string(format)); err != nil {
			return "", err
		}
		f.templates.Put(string(format), tmpl)
	}
	return tmpl.execute(len(format), args)
}

// Stats reports template cache statistics.
func (f *Formatter) Stats() cache.Stats {
	return f.templates.Stats()
}
