package printing

import "strings"

// PaperSize holds physical media dimensions in millimeters.
type PaperSize struct {
	WidthMM  float64
	HeightMM float64
}

// standardSizes maps normalized media names to dimensions. Label and
// receipt entries use the vendor-common WIDTHxHEIGHT naming; receipt
// rolls get a nominal 297mm cut length.
var standardSizes = map[string]PaperSize{
	"a4":        {210, 297},
	"a3":        {297, 420},
	"a5":        {148, 210},
	"letter":    {216, 279},
	"legal":     {216, 356},
	"tabloid":   {279, 432},
	"b4":        {250, 353},
	"b5":        {176, 250},
	"executive": {184, 267},
	"folio":     {210, 330},

	// Receipt rolls
	"58mm":       {58, 297},
	"80mm":       {80, 297},
	"thermal57":  {57, 297},
	"thermal80":  {80, 297},
	"thermal110": {110, 297},

	// Label stock
	"40x30":   {40, 30},
	"50x30":   {50, 30},
	"60x40":   {60, 40},
	"70x50":   {70, 50},
	"100x50":  {100, 50},
	"100x70":  {100, 70},
	"100x100": {100, 100},
	"100x150": {100, 150},
	"100x180": {100, 180},
	"30x20":   {30, 20},
	"40x20":   {40, 20},
	"40x60":   {40, 60},
	"50x80":   {50, 80},
	"25x15":   {25, 15},
	"32x19":   {32, 19},
	"40x25":   {40, 25},
	"22x12":   {22, 12},
	"26x16":   {26, 16},
	"25x25":   {25, 25},
	"38x25":   {38, 25},
	"76x25":   {76, 25},
	"76x38":   {76, 38},
}

// fallbackPaperSizes is reported when the platform cannot enumerate
// media for a queue.
var fallbackPaperSizes = []string{"A4", "Letter", "Legal"}

// NormalizePaperName lowercases a media name and strips the separators
// platforms disagree on, so "ISO_A4", "iso a4" and "isoa4" compare equal.
func NormalizePaperName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

// LookupPaperSize resolves a media name to physical dimensions.
// Unknown names return ok=false; callers pass those through to the
// platform untouched.
func LookupPaperSize(name string) (PaperSize, bool) {
	size, ok := standardSizes[NormalizePaperName(name)]
	return size, ok
}
