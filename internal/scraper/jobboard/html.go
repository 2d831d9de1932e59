package jobboard

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText flattens a description fragment to plain text.
func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
