package source

import (
	"fmt"
	"math/rand/v2"

	"medallion-demo/internal/frame"
)

var (
	syntheticCategories = []string{"Clothing and Accessories", "Footwear", "Bags, Wallets & Belts", "Toys", "Jewellery"}
	syntheticBrands     = []string{"Yk", "Oka", "Keo", "Pure Pl", "Ric", "Free Authori", "Orange Plum", "Mot"}
	syntheticSellers    = []string{"Shyam Enterprises", "KAPRAA", "AFFORDABLE FASHION", "RetailNet", "SandSMarketing"}
)

// SyntheticColumns is the schema of Synthetic tables, shaped like the
// Flipkart product export the default transform rules expect.
var SyntheticColumns = []frame.Column{
	{Name: "pid", Type: frame.String},
	{Name: "title", Type: frame.String},
	{Name: "brand", Type: frame.String},
	{Name: "category", Type: frame.String},
	{Name: "seller", Type: frame.String},
	{Name: "actual_price", Type: frame.String},
	{Name: "selling_price", Type: frame.String},
	{Name: "discount", Type: frame.String},
	{Name: "average_rating", Type: frame.Float},
	{Name: "quantity", Type: frame.Int},
	{Name: "out_of_stock", Type: frame.Bool},
}

// Synthetic generates n product rows from a seeded generator, so the same
// seed always yields the same table. About one row in fifty repeats an
// earlier pid and one in forty has a null title, so bronze cleaning has
// work to do.
func Synthetic(n int, seed uint64) *frame.Table {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([]frame.Row, 0, max(n, 0))
	for i := range max(n, 0) {
		pid := fmt.Sprintf("PRD%08d", i+1)
		if i > 0 && rng.IntN(50) == 0 {
			pid = fmt.Sprintf("PRD%08d", rng.IntN(i)+1)
		}
		brand := syntheticBrands[rng.IntN(len(syntheticBrands))]
		category := syntheticCategories[rng.IntN(len(syntheticCategories))]

		var title any = fmt.Sprintf("%s %s item %d", brand, category, i+1)
		if rng.IntN(40) == 0 {
			title = nil
		}
		actual := 199 + rng.IntN(4800)
		discount := rng.IntN(80)
		selling := actual * (100 - discount) / 100

		var rating any = frame.Round2(1 + rng.Float64()*4)
		if rng.IntN(30) == 0 {
			rating = nil
		}
		rows = append(rows, frame.Row{
			pid,
			title,
			brand,
			category,
			syntheticSellers[rng.IntN(len(syntheticSellers))],
			formatRupees(actual),
			formatRupees(selling),
			fmt.Sprintf("%d%% off", discount),
			rating,
			int64(1 + rng.IntN(10)),
			rng.IntN(10) == 0,
		})
	}
	return frame.MustNew(SyntheticColumns, rows)
}

// formatRupees renders a price the way the export does, e.g. "₹1,299".
func formatRupees(v int) string {
	s := fmt.Sprint(v)
	if len(s) > 3 {
		s = s[:len(s)-3] + "," + s[len(s)-3:]
	}
	return "₹" + s
}
