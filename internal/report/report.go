// Package report renders an analysis as a plain-text report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/insight"
)

var (
	heavyRule = strings.Repeat("=", 50)
	lightRule = strings.Repeat("-", 30)
	titler    = cases.Title(language.English)
)

// String renders the report into a string.
func String(r *analysis.Result, s *insight.Summary, in *insight.Insights) string {
	var b strings.Builder
	_ = Write(&b, r, s, in)
	return b.String()
}

// Write renders the report for r. Summary and insights are computed from r
// when nil.
func Write(w io.Writer, r *analysis.Result, s *insight.Summary, in *insight.Insights) error {
	if s == nil {
		s = insight.Summarize(r)
	}
	if in == nil {
		in = insight.Generate(r)
	}

	bw := bufio.NewWriter(w)
	p := printer{w: bw}

	p.line("FOOD ANALYSIS REPORT")
	p.line(heavyRule)

	switch {
	case r.Packaged != nil:
		p.packaged(r.Packaged)
	case r.Raw != nil:
		p.raw(r.Raw)
	default:
		p.line("")
		p.line("Detailed breakdown unavailable: the analysis does not match the %s schema.", r.Type)
	}

	p.line("")
	p.line("ANALYSIS SUMMARY")
	p.line(lightRule)
	p.bullets(s.NutritionalHighlights)

	p.line("")
	p.line("HEALTH INSIGHTS")
	p.line(lightRule)
	p.bullets(in.DietaryConsiderations)
	if md := in.MacroDistribution; md != nil {
		p.line("• Macro split: protein %.1f%%, carbs %.1f%%, fat %.1f%%",
			md.ProteinPercentage, md.CarbsPercentage, md.FatPercentage)
	}
	p.bullets(in.HealthBenefits)
	for _, tip := range in.StorageTips {
		p.line("• Storage tip: %s", tip)
	}
	p.bullets(in.ConsumptionTips)

	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

// printer keeps the first write error so the rendering code can ignore it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	if len(args) == 0 {
		_, p.err = io.WriteString(p.w, format+"\n")
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) bullets(items []string) {
	for _, item := range items {
		p.line("• %s", item)
	}
}

func (p *printer) packaged(pp *analysis.PackagedProduct) {
	p.line("")
	p.line("PACKAGED FOOD ANALYSIS")
	p.line(heavyRule)

	p.line("")
	p.line("Product: %s", pp.ProductInfo.ProductName)
	p.line("Brand: %s", pp.ProductInfo.Brand)
	p.line("Package Size: %s", pp.ProductInfo.PackageSize)

	nf := pp.NutritionFacts
	p.line("")
	p.line("Serving Size: %s %s", nf.ServingSize.Amount, nf.ServingSize.Unit)
	p.line("Servings Per Container: %s", nf.ServingSize.ServingsPerContainer)

	p.line("")
	p.line("NUTRITION FACTS")
	p.line(lightRule)
	p.line("Calories: %s", nf.Calories)

	p.line("")
	p.line("Macronutrients:")
	for _, n := range nf.Macronutrients.List() {
		p.line("• %s: %s%s%s", Label(n.Key), n.Amount, n.Unit, dailyValue(n.DailyValue))
	}

	p.line("")
	p.line("Vitamins & Minerals:")
	for _, n := range nf.VitaminsMinerals.List() {
		p.line("• %s: %s%s%s", Label(n.Key), n.Amount, n.Unit, dailyValue(n.DailyValue))
	}

	if len(pp.Ingredients) > 0 {
		p.line("")
		p.line("Ingredients:")
		p.line("%s", strings.Join(analysis.Strings(pp.Ingredients), ", "))
	}

	if len(pp.Allergens) > 0 {
		p.line("")
		p.line("Allergens:")
		p.line("%s", strings.Join(analysis.Strings(pp.Allergens), ", "))
	}

	p.line("")
	p.line("Dietary Information:")
	p.line("• %s: %s", Label("is_vegetarian"), yesNo(pp.DietaryInfo.IsVegetarian))
	p.line("• %s: %s", Label("is_vegan"), yesNo(pp.DietaryInfo.IsVegan))
	p.line("• %s: %s", Label("is_gluten_free"), yesNo(pp.DietaryInfo.IsGlutenFree))

	if pp.StorageInstructions != "" {
		p.line("")
		p.line("Storage: %s", pp.StorageInstructions)
	}
}

func (p *printer) raw(f *analysis.RawFood) {
	p.line("")
	p.line("Identified Items: %s", f.FoodIdentification.TotalItems)

	for _, item := range f.NutritionalInfo {
		p.line("")
		p.line("%s", strings.ToUpper(item.FoodName.String()))
		p.line("Serving Size: %s", item.ServingSize)
		p.line("Nutrition Facts:")
		p.line("• Calories: %s", item.NutritionFacts.Calories)

		p.line("")
		p.line("Health Benefits:")
		p.bullets(analysis.Strings(item.HealthBenefits))
	}
}

// Label turns a schema key such as "total_fat" into "Total Fat".
func Label(key string) string {
	return titler.String(strings.ReplaceAll(key, "_", " "))
}

func dailyValue(dv analysis.Value) string {
	if dv == "" {
		return ""
	}
	return fmt.Sprintf(" (%s%% DV)", dv)
}

func yesNo(f analysis.Flag) string {
	if f {
		return "Yes"
	}
	return "No"
}
