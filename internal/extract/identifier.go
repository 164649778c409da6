package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const detailLinkSelector = "a[href*='/detail/']"

var noManufacturersPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)There are no manufacturers found for`),
	regexp.MustCompile(`(?i)No results found`),
	regexp.MustCompile(`(?i)No manufacturer.*found`),
}

var (
	detailPathRe = regexp.MustCompile(`/detail/([^/?#]+)`)
	bracketRe    = regexp.MustCompile(`^\[|\]$`)
	nonMPNRe     = regexp.MustCompile(`[^\w\-/,:]`)
	hasDigitRe   = regexp.MustCompile(`[0-9]`)
	alphaOnlyRe  = regexp.MustCompile(`^[A-Za-z]+$`)
)

// mpnTextPatterns catch part numbers mentioned in free text but not linked
// structurally. Tried in order from strict to loose.
var mpnTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:\[)?([A-Z]{2,6}[A-Z0-9\-/,:]{3,30})(?:\])?\b`),
	regexp.MustCompile(`(?i)([A-Z]{3,}[A-Z0-9\-/,:]{4,30})\s+by[:\s]`),
	regexp.MustCompile(`(?i)([A-Z]{2,8}[A-Z0-9\-/,:]{4,35})`),
}

// NoManufacturers reports whether the page carries a "no manufacturers
// found" marker in any of its known phrasings.
func NoManufacturers(snap *Snapshot) bool {
	for _, re := range noManufacturersPatterns {
		if re.MatchString(snap.BodyText()) {
			return true
		}
	}
	return false
}

// ExtractMPNs recovers validated part numbers from a category page. Candidates
// come from detail-link targets and from free text; each is accepted only if
// it can be cross-verified against a detail link, the page title, or the body
// text.
func ExtractMPNs(snap *Snapshot) []string {
	if NoManufacturers(snap) {
		log.Debugf("no manufacturers on %s - skipping MPN extraction", snap.URL)
		return nil
	}

	seen := make(map[string]bool)
	var candidates []string
	add := func(mpn string) {
		if !seen[mpn] {
			seen[mpn] = true
			candidates = append(candidates, mpn)
		}
	}
	for _, mpn := range mpnsFromDetailLinks(snap) {
		add(mpn)
	}
	for _, mpn := range mpnsFromText(snap.BodyText()) {
		add(mpn)
	}

	log.Debugf("validating %d MPN candidates on %s", len(candidates), snap.URL)

	var hrefs []string
	snap.doc.Find(detailLinkSelector).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	upperTitle := strings.ToUpper(snap.Title)
	upperBody := strings.ToUpper(snap.BodyText())

	var valid []string
	for _, candidate := range candidates {
		switch {
		case matchesDetailLink(candidate, hrefs):
			log.Debugf("MPN %s verified by detail link", candidate)
			valid = append(valid, candidate)
		case strings.Contains(upperTitle, strings.ToUpper(candidate)):
			log.Debugf("MPN %s verified by page title", candidate)
			valid = append(valid, candidate)
		case strings.Contains(upperBody, strings.ToUpper(candidate)):
			log.Debugf("MPN %s verified by page text", candidate)
			valid = append(valid, candidate)
		}
	}

	log.Infof("validated %d of %d MPN candidates on %s", len(valid), len(candidates), snap.URL)
	return valid
}

// mpnsFromDetailLinks collects candidates from detail-link targets,
// preferring the URL's trailing path segment over the link text.
func mpnsFromDetailLinks(snap *Snapshot) []string {
	seen := make(map[string]bool)
	var mpns []string

	snap.doc.Find(detailLinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")

		candidate := strings.TrimSpace(a.Text())
		if m := detailPathRe.FindStringSubmatch(href); m != nil {
			candidate = strings.TrimSpace(m[1])
		}

		candidate = bracketRe.ReplaceAllString(candidate, "")
		candidate = strings.ToUpper(nonMPNRe.ReplaceAllString(candidate, ""))

		if len(candidate) >= 6 && len(candidate) <= 40 &&
			hasDigitRe.MatchString(candidate) && !seen[candidate] {
			seen[candidate] = true
			mpns = append(mpns, candidate)
		}
	})

	return mpns
}

// mpnsFromText scans page text with the ordered candidate patterns.
func mpnsFromText(pageText string) []string {
	seen := make(map[string]bool)
	var mpns []string

	for _, re := range mpnTextPatterns {
		for _, m := range re.FindAllStringSubmatch(pageText, -1) {
			candidate := strings.ToUpper(nonMPNRe.ReplaceAllString(m[1], ""))
			if len(candidate) >= 6 && len(candidate) <= 40 &&
				hasDigitRe.MatchString(candidate) &&
				!alphaOnlyRe.MatchString(candidate) && !seen[candidate] {
				seen[candidate] = true
				mpns = append(mpns, candidate)
			}
		}
	}

	return mpns
}

// matchesDetailLink reports whether the candidate appears in any detail-link
// target, directly or with slashes percent-encoded.
func matchesDetailLink(candidate string, hrefs []string) bool {
	encoded := strings.ReplaceAll(candidate, "/", "%2F")
	for _, href := range hrefs {
		if strings.Contains(href, candidate) ||
			strings.Contains(href, encoded) ||
			strings.Contains(strings.ToUpper(href), strings.ToUpper(encoded)) {
			return true
		}
	}
	return false
}
