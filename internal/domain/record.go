package domain

// Record is one distributor price/stock listing for a part number. MPN and
// SupplierName must be non-empty for a record to enter the accumulator; every
// other field may be an empty string.
type Record struct {
	MPN               string `json:"mpn"`
	PriceQty          string `json:"price_qty"`
	UnitPrice         string `json:"unit_price"`
	MFGName           string `json:"mfg_name"`
	SupplierName      string `json:"supplier_name"`
	MFGLeadTime       string `json:"mfg_lead_time"`
	OnHandStock       string `json:"on_hand_stock"`
	StockPerBreak     string `json:"stock_per_price_break"`
	PackagingType     string `json:"packaging_type"`
	DateCode          string `json:"date_code"`
	COO               string `json:"coo"`
	MOQ               string `json:"moq"`
	Currency          string `json:"currency"`
	MainCategory      string `json:"main_category"`
	DistributorBlock  string `json:"distributor_block"`
	DistiPartNumber   string `json:"disti_part_number"`
	Region            string `json:"region"`
	ScrapeTime        string `json:"scrape_time"`
}

// CSVHeaders is the persisted column order, scrape_time last.
var CSVHeaders = []string{
	"MPN", "Price_Qty", "Unit_Price", "MFG_Name", "Supplier_Name",
	"MFG_Lead_Time", "On_Hand_Stock", "Stock_Per_Price_Break",
	"Packaging_Type", "Date_Code", "COO", "MOQ", "Currency",
	"Main_Category", "Distributor_Block", "Disti_Part_Number", "Region",
	"scrape_time",
}

// Row returns the record's field values in CSVHeaders order.
func (r *Record) Row() []string {
	return []string{
		r.MPN, r.PriceQty, r.UnitPrice, r.MFGName, r.SupplierName,
		r.MFGLeadTime, r.OnHandStock, r.StockPerBreak,
		r.PackagingType, r.DateCode, r.COO, r.MOQ, r.Currency,
		r.MainCategory, r.DistributorBlock, r.DistiPartNumber, r.Region,
		r.ScrapeTime,
	}
}

// Valid reports whether the record satisfies the admission invariant.
func (r *Record) Valid() bool {
	return r.MPN != "" && r.SupplierName != ""
}
