package codec

import "strings"

var (
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)

	// Only the five entities produced by Escape are reversed; any other
	// entity text is kept verbatim.
	unescaper = strings.NewReplacer(
		"&apos;", "'",
		"&quot;", `"`,
		"&gt;", ">",
		"&lt;", "<",
		"&amp;", "&",
	)

	lineFolder = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// Escape replaces the five markup-significant characters of s with their
// entity references.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// foldLines replaces every line break with a single space so a value always
// stays on one record line.
func foldLines(s string) string {
	return lineFolder.Replace(s)
}
