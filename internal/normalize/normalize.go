// Package normalize holds the pure text cleaners that turn noisy rendered
// page fragments into canonical field values. Every function is total: it
// returns a canonical value or an empty string, never an error.
package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	priceTokenRe  = regexp.MustCompile(`[\$€£¥₹¢]?([0-9,]+\.?[0-9]*)`)
	currencySymRe = regexp.MustCompile(`[\$€£¥₹¢]`)

	digitRunRe    = regexp.MustCompile(`[\d,]+`)
	paramSuffixRe = regexp.MustCompile(`/Parametric Search.*`)

	nonNameRe  = regexp.MustCompile(`[^\w\s&\-]`)
	mfgShapeRe = regexp.MustCompile(`^[A-Z][A-Za-z\s&\-]{1,28}[A-Za-z]?$`)
	digitRe    = regexp.MustCompile(`\d`)

	trailingPunctRe = regexp.MustCompile(`[,.;:]+$`)
	supplyNoiseRe   = regexp.MustCompile(`(?i)\b(MIN\s*QTY|MOQ|ROHS?|LF|LEAD\s*FREE|STD|STOCK|QTY|PCS?)\b.*$`)
	countrySepRe    = regexp.MustCompile(`[/|(),]+`)
	nonLetterRe     = regexp.MustCompile(`[^a-zA-Z\s]`)
)

// mfgBlockList rejects UI and search pollution masquerading as manufacturer
// names. Matched case-insensitively as substrings.
var mfgBlockList = []string{
	"parametric", "search", "filter", "category", "browse",
	"results", "view", "find", "parts", "list", "data",
	"select", "sponsored", "alert", "loading", "page",
}

var countryGarbage = []string{"cookies", "cookie", "tracking", "terms", "policy"}

// packagingPatterns are tried in priority order; the first match is returned
// verbatim. "Container" is only a fallback when none of these hit.
var packagingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Bulk`),
	regexp.MustCompile(`(?i)Tray`),
	regexp.MustCompile(`(?i)Reel`),
	regexp.MustCompile(`(?i)Tape`),
	regexp.MustCompile(`(?i)Cut Tape`),
	regexp.MustCompile(`(?i)Each`),
	regexp.MustCompile(`(?i)Bag`),
	regexp.MustCompile(`(?i)Box`),
	regexp.MustCompile(`(?i)Tube`),
	regexp.MustCompile(`(?i)Rail`),
	regexp.MustCompile(`(?i)Ammo Pack|Ammo`),
	regexp.MustCompile(`(?i)Carrier Tape`),
	regexp.MustCompile(`(?i)Digi-Reel|MouseReel`),
	regexp.MustCompile(`(?i)Cut Strip`),
	regexp.MustCompile(`(?i)Digi-Stake`),
	regexp.MustCompile(`(?i)Loose`),
	regexp.MustCompile(`(?i)Plastic Box`),
	regexp.MustCompile(`(?i)Anti-Static Bag|ESD`),
}

// CleanPrice normalizes raw price text to "<symbol><digits.digits>" form.
// Commas are treated as thousands separators and stripped ("$3,250.00"
// becomes "$3250.00"). If no numeric token is present the input is returned
// truncated to 50 characters; blank input yields the empty string.
func CleanPrice(priceText string) string {
	if strings.TrimSpace(priceText) == "" {
		return ""
	}

	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(priceText), "")
	if m := priceTokenRe.FindStringSubmatch(cleaned); m != nil {
		numeric := strings.ReplaceAll(m[1], ",", "")
		if sym := currencySymRe.FindString(cleaned); sym != "" {
			return sym + numeric
		}
		return numeric
	}

	return truncate(cleaned, 50)
}

// CurrencyFrom maps currency symbols or codes in raw price text to a fixed
// currency code, defaulting to USD.
func CurrencyFrom(priceText string) string {
	switch {
	case priceText == "":
		return "USD"
	case strings.Contains(priceText, "¥") || strings.Contains(priceText, "CNY"):
		return "CNY"
	case strings.Contains(priceText, "€"):
		return "EUR"
	case strings.Contains(priceText, "£") || strings.Contains(priceText, "GBP"):
		return "GBP"
	case strings.Contains(priceText, "₹") || strings.Contains(priceText, "INR"):
		return "INR"
	default:
		return "USD"
	}
}

// CleanCategory strips digit runs and trailing parametric-search suffixes
// from a category name and keeps only the first slash-delimited segment.
func CleanCategory(catText string) string {
	clean := strings.TrimSpace(digitRunRe.ReplaceAllString(catText, ""))
	clean = strings.TrimSpace(paramSuffixRe.ReplaceAllString(clean, ""))
	if i := strings.Index(clean, "/"); i >= 0 {
		clean = strings.TrimSpace(clean[:i])
	}
	return truncate(clean, 50)
}

// CleanManufacturer validates and cleans a manufacturer name. It rejects
// short inputs, anything carrying a block-listed keyword, and anything that
// does not look like a capitalized name without digits.
func CleanManufacturer(mfgText string) string {
	if len(strings.TrimSpace(mfgText)) < 2 {
		return ""
	}

	low := strings.ToLower(mfgText)
	for _, kw := range mfgBlockList {
		if strings.Contains(low, kw) {
			return ""
		}
	}

	cleaned := nonNameRe.ReplaceAllString(strings.TrimSpace(mfgText), "")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))

	if len(cleaned) >= 2 && mfgShapeRe.MatchString(cleaned) && !digitRe.MatchString(cleaned) {
		return truncate(cleaned, 30)
	}

	return ""
}

// CleanCountry validates and canonicalizes a country-of-origin fragment.
func CleanCountry(text string) string {
	if text == "" {
		return ""
	}

	txt := strings.TrimSpace(text)
	txt = strings.TrimSpace(trailingPunctRe.ReplaceAllString(txt, ""))
	txt = strings.TrimSpace(supplyNoiseRe.ReplaceAllString(txt, ""))

	low := strings.ToLower(txt)
	for _, g := range countryGarbage {
		if strings.Contains(low, g) {
			return ""
		}
	}

	switch low {
	case "us", "usa", "u.s.a", "u.s.", "u.s":
		return "USA"
	case "uk", "united kingdom":
		return "United Kingdom"
	}

	// Keep the last non-empty segment from separator-joined values like
	// "CN / Shenzhen" or "Japan (Tokyo)".
	segments := countrySepRe.Split(txt, -1)
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			txt = s
			break
		}
	}

	txt = strings.TrimSpace(nonLetterRe.ReplaceAllString(txt, ""))
	txt = strings.TrimSpace(whitespaceRe.ReplaceAllString(txt, " "))

	if len(txt) >= 2 && len(txt) <= 40 && !isNumeric(txt) {
		return txt
	}
	return ""
}

// PackagingType extracts a packaging designation from distributor row text,
// preferring specific formats over the generic "Container".
func PackagingType(rowText string) string {
	for _, re := range packagingPatterns {
		if m := re.FindString(rowText); m != "" {
			return strings.TrimSpace(m)
		}
	}
	if strings.Contains(rowText, "Container") {
		return "Container"
	}
	return ""
}

// MainCategory derives the primary category from a hierarchical path like
// "Components/Connectors/Headers", skipping the generic root segment.
func MainCategory(categoryPath string) string {
	var parts []string
	for _, p := range strings.Split(categoryPath, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if strings.EqualFold(parts[0], "components") && len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

// SplitCategoryManufacturer splits a two-segment category path into the
// cleaned category and a manufacturer-name hint when the trailing segment
// looks like a manufacturer rather than a pagination artifact.
func SplitCategoryManufacturer(categoryPath string) (category, mfgHint string) {
	if i := strings.LastIndex(categoryPath, "/"); i >= 0 {
		cand := strings.TrimSpace(categoryPath[i+1:])
		cand = nonNameRe.ReplaceAllString(cand, "")
		if len(cand) > 2 && !strings.HasPrefix(cand, "Page") {
			return CleanCategory(categoryPath[:i]), cand
		}
	}
	return CleanCategory(categoryPath), ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
