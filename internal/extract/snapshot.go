// Package extract recovers structured supply-chain data from rendered page
// snapshots: part-number candidates, manufacturer names, and distributor
// pricing rows.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is a parsed capture of one rendered page. Extraction functions
// operate on snapshots only, so they stay independent of the browser.
type Snapshot struct {
	URL   string
	Title string

	doc      *goquery.Document
	bodyText string
}

// NewSnapshot parses rendered HTML into a queryable snapshot.
func NewSnapshot(url, title, html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", url, err)
	}

	// Script payloads are not visible text; left in, they feed false
	// part-number candidates and no-results markers.
	doc.Find("script, style, noscript").Remove()

	return &Snapshot{
		URL:      url,
		Title:    title,
		doc:      doc,
		bodyText: strings.TrimSpace(doc.Find("body").Text()),
	}, nil
}

// Doc exposes the underlying document for structural queries.
func (s *Snapshot) Doc() *goquery.Document {
	return s.doc
}

// BodyText returns the page's visible body text.
func (s *Snapshot) BodyText() string {
	return s.bodyText
}
