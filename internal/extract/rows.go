package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/normalize"
)

const distributorRowSelector = "tr.row[data-distributor_name]"

var (
	distiNumberRe = regexp.MustCompile(`DISTI\s*#?\s*([A-Za-z0-9\-\:_]+)`)
	regionRe      = regexp.MustCompile(`(?i)(Americas|Europe|Asia|Global)\s*[-—]\s*\d+`)
	leadTimeRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:weeks?|days?)\b`)
	dateCodeRe    = regexp.MustCompile(`(?i)(?:Date Code|DC|Lot)[:\s]*(\d{4}|\d{2}\d{2})`)
	moqRe         = regexp.MustCompile(`(?i)(?:MOQ|Min\s+Qty?)[:\s]*(\d{1,5}(?:,\d{3})?)`)
	cooRe         = regexp.MustCompile(`(?i)COO[:\s]*([A-Za-z\s]{2,40})`)
	nonDigitRe    = regexp.MustCompile(`[^\d]`)
)

// ExtractRows walks the distributor rows on a results page for one validated
// part number and returns the records they yield. Rows with a price list are
// expanded to one record per valid quantity/price pair; rows without one emit
// a single fallback record only when both supplier and stock are known. A
// malformed row never aborts the page.
func ExtractRows(snap *Snapshot, mpn, categoryPath string) []*domain.Record {
	_, mfgHint := normalize.SplitCategoryManufacturer(categoryPath)
	mainCategory := normalize.MainCategory(categoryPath)

	mfgName := ResolveManufacturer(snap, mpn)
	if mfgName == "" {
		mfgName = mfgHint
	}
	if GuardPollution(mfgName) == "" && mfgName != "" {
		log.Warnf("blocked polluted manufacturer %q for %s", mfgName, mpn)
		mfgName = ""
	}

	rows := snap.doc.Find(distributorRowSelector)
	log.Debugf("found %d distributor rows for %s", rows.Length(), mpn)

	var records []*domain.Record
	rows.Each(func(i int, tr *goquery.Selection) {
		records = append(records, extractRow(tr, mpn, mfgName, mainCategory)...)
	})

	log.Infof("extracted %d rows for %s", len(records), mpn)
	return records
}

func extractRow(tr *goquery.Selection, mpn, mfgName, mainCategory string) []*domain.Record {
	distributorName, _ := tr.Attr("data-distributor_name")
	if distributorName == "" {
		return nil
	}

	supplier := normalize.CleanManufacturer(distributorName)
	if len(supplier) < 2 {
		return nil
	}

	rowText := tr.Text()
	stock := rowStock(tr, supplier)

	base := domain.Record{
		MPN:              mpn,
		MFGName:          mfgName,
		SupplierName:     supplier,
		MainCategory:     mainCategory,
		DistributorBlock: distributorName,
		OnHandStock:      stock,
		StockPerBreak:    stock,
		PackagingType:    normalize.PackagingType(rowText),
	}

	if m := distiNumberRe.FindStringSubmatch(rowText); m != nil {
		base.DistiPartNumber = m[1]
	}
	if m := regionRe.FindStringSubmatch(rowText); m != nil {
		base.Region = m[1]
	}
	if m := leadTimeRe.FindStringSubmatch(rowText); m != nil {
		base.MFGLeadTime = m[1] + " weeks"
	}
	if m := dateCodeRe.FindStringSubmatch(rowText); m != nil {
		base.DateCode = m[1]
	}
	if m := moqRe.FindStringSubmatch(rowText); m != nil {
		base.MOQ = m[1]
	}
	if m := cooRe.FindStringSubmatch(rowText); m != nil {
		base.COO = normalize.CleanCountry(m[1])
	}

	priceItems := tr.Find("td.td-price ul.price-list li")
	if priceItems.Length() > 0 {
		var records []*domain.Record
		priceItems.Each(func(_ int, li *goquery.Selection) {
			qtyText := strings.TrimSpace(li.Find(".label").First().Text())
			rawPrice := strings.TrimSpace(li.Find(".value").First().Text())

			qty := nonDigitRe.ReplaceAllString(qtyText, "")
			price := normalize.CleanPrice(rawPrice)
			if qty == "" || price == "" {
				return
			}

			rec := base
			rec.PriceQty = qty
			rec.UnitPrice = price
			rec.Currency = normalize.CurrencyFrom(rawPrice)

			// Re-check at emission time so copies cannot carry a
			// polluted name past the early guard.
			if GuardPollution(rec.MFGName) == "" && rec.MFGName != "" {
				log.Warnf("final pollution block for %s", mpn)
				return
			}
			records = append(records, &rec)
		})
		return records
	}

	// No price list at all: a row with neither price nor stock carries no
	// signal and is dropped.
	if base.SupplierName != "" && stock != "" {
		rec := base
		return []*domain.Record{&rec}
	}
	return nil
}

// rowStock resolves on-hand stock through the fallback chain: data-stock
// attribute, then the stock cell's text, then data-instock. Never fails,
// degrades to empty.
func rowStock(tr *goquery.Selection, supplier string) string {
	if v, ok := tr.Attr("data-stock"); ok {
		if v = strings.TrimSpace(v); allDigits(v) {
			return v
		}
	}

	if txt := strings.TrimSpace(tr.Find("td.td-stock").First().Text()); allDigits(txt) {
		return txt
	}

	if v, ok := tr.Attr("data-instock"); ok {
		if v = strings.TrimSpace(v); allDigits(v) {
			return v
		}
	}

	log.Debugf("no stock from %s", supplier)
	return ""
}

func allDigits(s string) bool {
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
