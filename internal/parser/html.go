package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser converts HTML email bodies to plain text
type HTMLParser struct {
	whitespaceRegex *regexp.Regexp
	newlineRegex    *regexp.Regexp
	invisibleRegex  *regexp.Regexp
}

// NewHTMLParser creates a new HTML parser
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{
		whitespaceRegex: regexp.MustCompile(`[^\S\n]+`),
		newlineRegex:    regexp.MustCompile(`\n{3,}`),
		// Remove invisible Unicode characters (zero-width spaces, etc.)
		invisibleRegex: regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{061C}\x{2060}-\x{2064}\x{206A}-\x{206F}\x{FE00}-\x{FE0F}\x{FFF0}-\x{FFF8}]+`),
	}
}

// Parse converts HTML to clean plain text. Links render as their visible
// text, images are dropped entirely.
func (p *HTMLParser) Parse(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	// Remove non-content elements
	doc.Find("script, style, head, meta, link, img").Remove()

	// Add newlines before block elements
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := doc.Text()

	// Remove invisible Unicode characters first
	text = p.invisibleRegex.ReplaceAllString(text, "")

	// Clean up whitespace (but preserve newlines)
	text = p.whitespaceRegex.ReplaceAllString(text, " ")

	// Trim each line, drop lines that end up empty
	lines := strings.Split(text, "\n")
	cleanLines := make([]string, 0, len(lines))
	var blanks int
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blanks++
			continue
		}
		// Keep at most one blank line between paragraphs
		if blanks > 0 && len(cleanLines) > 0 {
			cleanLines = append(cleanLines, "")
		}
		blanks = 0
		cleanLines = append(cleanLines, line)
	}
	text = strings.Join(cleanLines, "\n")

	// Normalize newlines (max 2 consecutive)
	text = p.newlineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}
