// Package stock manages per-supplier stock tables and the combined stock
// materialized view. The combined table is derived and rebuildable; the
// per-supplier blobs are the source of truth.
package stock

// CombinedColumns is the fixed target schema of the combined stock view.
// Rebuild back-fills absent columns with empty strings so every supplier's
// rows land in the same shape.
var CombinedColumns = []string{
	"Stock #", "Availability", "Shape", "Weight", "Color", "Clarity", "Cut", "Polish", "Symmetry",
	"Fluorescence Color", "Measurements", "Shade", "Milky", "Eye Clean", "Lab", "Report #", "Location",
	"Treatment", "Discount", "Price Per Carat", "Final Price", "Depth %", "Table %", "Girdle Thin",
	"Girdle Thick", "Girdle %", "Girdle Condition", "Culet Size", "Culet Condition", "Crown Height",
	"Crown Angle", "Pavilion Depth", "Pavilion Angle", "Inscription", "Cert comment", "KeyToSymbols",
	"White Inclusion", "Black Inclusion", "Open Inclusion", "Fancy Color", "Fancy Color Intensity",
	"Fancy Color Overtone", "Country", "State", "City", "CertFile", "Diamond Video", "Diamond Image",
	"SUPPLIER", "LOCKED", "Diamond Type",
}

// UploadColumns are the columns a supplier upload must carry. CUT, Polish
// and Symmetry are optional in uploads.
var UploadColumns = []string{
	"Stock #", "Shape", "Weight", "Color", "Clarity",
	"Price Per Carat", "Lab", "Report #", "Diamond Type", "Description",
}

const (
	colStockID  = "Stock #"
	colWeight   = "Weight"
	colShape    = "Shape"
	colPPC      = "Price Per Carat"
	colSupplier = "SUPPLIER"
	colLocked   = "LOCKED"
	colUploaded = "UPLOADED_AT"
)
