package markup_test

import (
	"fmt"

	"github.com/FocuswithJustin/safemarkup/core/markup"
)

func ExampleEscape() {
	m, _ := markup.Escape(`"1 < 2"`, true)
	fmt.Println(m)
	m, _ = markup.Escape(`"1 < 2"`, false)
	fmt.Println(m)
	// Output:
	// &#34;1 &lt; 2&#34;
	// "1 &lt; 2"
}

func ExampleMarkup_Concat() {
	m, _ := markup.Markup("<b>").Concat("<i>")
	fmt.Println(m)
	// Output: <b>&lt;i&gt;
}

func ExampleMarkup_Join() {
	m, _ := markup.Markup("<br />").Join([]any{"foo", "<bar />", markup.Markup("<baz />")}, true)
	fmt.Println(m)
	// Output: foo<br />&lt;bar /&gt;<br /><baz />
}

func ExampleMarkup_Format() {
	m, _ := markup.Markup("<em>%s</em> has %d items").Format("Tom & Jerry", 3)
	fmt.Println(m)
	// Output: <em>Tom &amp; Jerry</em> has 3 items
}

func ExampleMarkup_StripEntities() {
	fmt.Println(markup.Markup("&amp; &#106;").StripEntities(false))
	fmt.Println(markup.Markup("&amp; &#106;").StripEntities(true))
	// Output:
	// & j
	// &amp; j
}

func ExampleMarkup_Repr() {
	fmt.Println(markup.Markup("foo").Repr())
	// Output: <Markup "foo">
}
