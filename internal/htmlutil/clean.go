package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts an HTML report fragment to plain text, decoding entities
// and dropping script and style content.
func ToText(s string) string {
	text := html2text.HTML2TextWithOptions(s, html2text.WithUnixLineBreaks())
	return strings.TrimSpace(text)
}
