// Package insight derives summaries and health notes from a parsed analysis.
// Nothing here returns an error: when the document is missing a field or a
// value is not numeric, the output carries FallbackNote instead.
package insight

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/domain"
)

const FallbackNote = "Unable to complete full nutritional analysis"

// Sentinel results of MacroRatio.
const (
	RatioNotApplicable = "N/A"
	RatioUnavailable   = "Unable to calculate ratio"
)

// Dietary thresholds per serving. Values inside the closed bands between
// the low and high marks get no flag.
const (
	highSugarGrams = 10
	lowSugarGrams  = 5
	highSodiumMg   = 400
	lowSodiumMg    = 140
)

var errMissing = errors.New("missing field")

type MacroDistribution struct {
	ProteinPercentage float64 `json:"protein_percentage"`
	CarbsPercentage   float64 `json:"carbs_percentage"`
	FatPercentage     float64 `json:"fat_percentage"`
}

type Insights struct {
	DietaryConsiderations []string           `json:"dietary_considerations"`
	NutrientDensityScore  int                `json:"nutrient_density_score"`
	HealthBenefits        []string           `json:"health_benefits"`
	ConsumptionTips       []string           `json:"consumption_tips"`
	StorageTips           []string           `json:"storage_tips"`
	MacroDistribution     *MacroDistribution `json:"macro_distribution,omitempty"`
}

type Summary struct {
	Type                  domain.FoodType `json:"type"`
	NutritionalHighlights []string        `json:"nutritional_highlights"`
	HealthScore           int             `json:"health_score"`
	Recommendations       []string        `json:"recommendations"`
}

// Generate computes the health insights for r.
func Generate(r *analysis.Result) *Insights {
	out := &Insights{
		DietaryConsiderations: []string{},
		HealthBenefits:        []string{},
		ConsumptionTips:       []string{},
		StorageTips:           []string{},
	}

	var err error
	switch {
	case r.ViewErr != nil:
		err = r.ViewErr
	case r.Type == domain.FoodTypePackaged && r.Packaged != nil:
		err = packagedInsights(r.Packaged, out)
	case r.Type == domain.FoodTypeRaw && r.Raw != nil:
		err = rawInsights(r.Raw, out)
	default:
		err = fmt.Errorf("no %s view", r.Type)
	}
	if err != nil {
		out.DietaryConsiderations = append(out.DietaryConsiderations, FallbackNote)
	}
	return out
}

// packagedInsights stops at the first unreadable value. Flags added before
// that point are kept. Sugar and sodium are skipped when absent but fail
// when present as null or any other non-object; a missing allergens key
// fails too.
func packagedInsights(p *analysis.PackagedProduct, out *Insights) error {
	m := p.NutritionFacts.Macronutrients

	protein, err := amount(m.Protein)
	if err != nil {
		return err
	}
	carbs, err := amount(m.TotalCarbohydrates)
	if err != nil {
		return err
	}
	fat, err := amount(m.TotalFat)
	if err != nil {
		return err
	}

	if total := protein + carbs + fat; total > 0 {
		out.MacroDistribution = &MacroDistribution{
			ProteinPercentage: round(protein/total*100, 1),
			CarbsPercentage:   round(carbs/total*100, 1),
			FatPercentage:     round(fat/total*100, 1),
		}
	}

	if m.TotalSugars.Present() {
		sugar, err := amount(m.TotalSugars)
		if err != nil {
			return err
		}
		if flag := SugarFlag(sugar); flag != "" {
			out.DietaryConsiderations = append(out.DietaryConsiderations, flag)
		}
	}

	if m.Sodium.Present() {
		sodium, err := amount(m.Sodium)
		if err != nil {
			return err
		}
		if flag := SodiumFlag(sodium); flag != "" {
			out.DietaryConsiderations = append(out.DietaryConsiderations, flag)
		}
	}

	if p.Allergens == nil {
		return fmt.Errorf("allergens: %w", errMissing)
	}
	if len(p.Allergens) > 0 {
		out.DietaryConsiderations = append(out.DietaryConsiderations,
			"Contains allergens: "+strings.Join(analysis.Strings(p.Allergens), ", "))
	}
	return nil
}

func rawInsights(f *analysis.RawFood, out *Insights) error {
	if f.NutritionalInfo == nil {
		return fmt.Errorf("nutritional_info: %w", errMissing)
	}
	for _, item := range f.NutritionalInfo {
		out.HealthBenefits = append(out.HealthBenefits, analysis.Strings(item.HealthBenefits)...)
		tips := analysis.Strings(item.StorageTips)
		out.StorageTips = append(out.StorageTips, tips...)
		if len(tips) > 0 {
			out.ConsumptionTips = append(out.ConsumptionTips,
				fmt.Sprintf("Best ways to consume %s: %s", item.FoodName, strings.Join(tips, "; ")))
		}
	}
	return nil
}

// SugarFlag classifies grams of total sugars per serving.
func SugarFlag(grams float64) string {
	switch {
	case grams > highSugarGrams:
		return "High in sugar"
	case grams < lowSugarGrams:
		return "Low in sugar"
	default:
		return ""
	}
}

// SodiumFlag classifies milligrams of sodium per serving.
func SodiumFlag(mg float64) string {
	switch {
	case mg > highSodiumMg:
		return "High in sodium"
	case mg < lowSodiumMg:
		return "Low in sodium"
	default:
		return ""
	}
}

// Summarize builds the headline figures for r.
func Summarize(r *analysis.Result) *Summary {
	s := &Summary{
		Type:                  r.Type,
		NutritionalHighlights: []string{},
		Recommendations:       []string{},
	}

	switch {
	case r.Type == domain.FoodTypePackaged && r.Packaged != nil:
		nf := r.Packaged.NutritionFacts
		s.NutritionalHighlights = append(s.NutritionalHighlights,
			fmt.Sprintf("Calories per serving: %s", nf.Calories))
		protein, carbs := nf.Macronutrients.Protein, nf.Macronutrients.TotalCarbohydrates
		if !protein.Present() {
			s.NutritionalHighlights = append(s.NutritionalHighlights, FallbackNote)
			break
		}
		s.NutritionalHighlights = append(s.NutritionalHighlights,
			fmt.Sprintf("Protein per serving: %s%s", protein.Amount, protein.Unit))
		if carbs.Present() {
			s.NutritionalHighlights = append(s.NutritionalHighlights,
				fmt.Sprintf("Protein to carbohydrate ratio: %s",
					MacroRatio(string(protein.Amount+protein.Unit), string(carbs.Amount+carbs.Unit))))
		}
	case r.Type == domain.FoodTypeRaw && r.Raw != nil && r.Raw.NutritionalInfo != nil:
		for _, item := range r.Raw.NutritionalInfo {
			s.NutritionalHighlights = append(s.NutritionalHighlights,
				fmt.Sprintf("%s: %s calories per serving", item.FoodName, item.NutritionFacts.Calories))
		}
	default:
		s.NutritionalHighlights = append(s.NutritionalHighlights, FallbackNote)
	}
	return s
}

// MacroRatio formats protein grams per gram of carbohydrate as "X:1", with X
// rounded to two decimals. Every "g" is stripped before parsing, so both
// "12g" and "12" are accepted.
func MacroRatio(protein, carbs string) string {
	p, err := grams(protein)
	if err != nil {
		return RatioUnavailable
	}
	c, err := grams(carbs)
	if err != nil {
		return RatioUnavailable
	}
	if c == 0 {
		return RatioNotApplicable
	}
	return formatDecimal(round(p/c, 2)) + ":1"
}

func grams(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, "g", "")), 64)
}

func amount(n analysis.Nutrient) (float64, error) {
	if !n.Present() {
		return 0, errMissing
	}
	if err := n.Err(); err != nil {
		return 0, err
	}
	return n.Amount.Float()
}

// round rounds x to places decimals, taking the even neighbour when x is
// exactly halfway: round(0.125, 2) is 0.12.
func round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// formatDecimal prints x with the fewest digits that round-trip and always
// at least one fractional digit: 0.5, 2.0, 0.33.
func formatDecimal(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.Abs(x) >= 1e16:
		return strconv.FormatFloat(x, 'e', -1, 64)
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
