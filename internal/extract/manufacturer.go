package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/normalize"
)

// headingPatterns match manufacturer names in results-page headings like
// "LM358N by Texas Instruments" or "by: Vishay".
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([A-Z][A-Za-z\s&\-]{2,30})(?:\s+by|\s+from|\s*[-|])`),
	regexp.MustCompile(`(?i)by[:\s]*([A-Z][A-Za-z\s&\-]{2,30})`),
}

// ResolveManufacturer recovers a manufacturer name for the given part number.
// Structural association through a detail link's table row is tried first,
// then heading patterns. Returns empty when neither source yields a clean
// name; the caller falls back to the category-path hint.
func ResolveManufacturer(snap *Snapshot, mpn string) string {
	upperMPN := strings.ToUpper(mpn)

	var fromRow string
	snap.doc.Find(detailLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(strings.ToUpper(a.Text()), upperMPN) {
			return true
		}
		row := a.ParentsFiltered("tr").First()
		if row.Length() == 0 {
			return true
		}
		if name := normalize.CleanManufacturer(strings.TrimSpace(row.Text())); name != "" {
			fromRow = name
			return false
		}
		return true
	})
	if fromRow != "" {
		log.Debugf("manufacturer for %s from detail row: %s", mpn, fromRow)
		return fromRow
	}

	heading := strings.TrimSpace(snap.doc.Find("h1").First().Text())
	for _, re := range headingPatterns {
		if m := re.FindStringSubmatch(heading); m != nil {
			if name := normalize.CleanManufacturer(m[1]); name != "" {
				log.Debugf("manufacturer for %s from heading: %s", mpn, name)
				return name
			}
		}
	}

	return ""
}

// GuardPollution forces a resolved manufacturer name to empty when it still
// carries search-page artifacts, rather than polluting output.
func GuardPollution(mfgName string) string {
	low := strings.ToLower(mfgName)
	if strings.Contains(low, "parametric") || strings.Contains(low, "search") {
		return ""
	}
	return mfgName
}
