package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbonduro/foodscan/internal/domain"
)

// Result is one parsed analysis. Document holds the JSON object exactly as
// the model produced it (after boolean normalisation) and is what gets
// serialised and stored. Packaged or Raw, matching Type, is a typed view of
// the same document for insight and report generation.
//
// The view is decoded field by field: a field with the wrong shape is left
// empty (or, for nutrients, carries its error) while the rest of the view
// still decodes. ViewErr is set only when the document itself is not an
// object.
type Result struct {
	Type     domain.FoodType
	Document json.RawMessage
	Packaged *PackagedProduct
	Raw      *RawFood
	ViewErr  error
}

// MarshalJSON emits the stored document unchanged.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.Document) == 0 {
		return []byte("null"), nil
	}
	return r.Document, nil
}

// Restore rebuilds a Result from a stored document and its recorded type.
func Restore(foodType domain.FoodType, doc json.RawMessage) (*Result, error) {
	if !foodType.Valid() {
		return nil, fmt.Errorf("unknown food type %q", foodType)
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("stored scan result is not valid JSON")
	}
	r := &Result{Type: foodType, Document: doc}
	r.decodeView()
	return r, nil
}

func (r *Result) decodeView() {
	switch r.Type {
	case domain.FoodTypePackaged:
		var p PackagedProduct
		if err := json.Unmarshal(r.Document, &p); err != nil {
			r.ViewErr = fmt.Errorf("decode packaged product: %w", err)
			return
		}
		r.Packaged = &p
	case domain.FoodTypeRaw:
		var f RawFood
		if err := json.Unmarshal(r.Document, &f); err != nil {
			r.ViewErr = fmt.Errorf("decode raw food: %w", err)
			return
		}
		r.Raw = &f
	}
}

// Value is a scalar the model may send as a string, a number, a boolean or
// null. Objects and arrays are kept as their compact JSON text.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Value(buf.String())
	}
	return nil
}

func (v Value) String() string {
	return string(v)
}

// Float parses the value as a plain decimal number.
func (v Value) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
}

// Flag is a boolean the model may send as true/false, "yes"/"no" or a
// quoted boolean. Anything unrecognised reads as false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v Value
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "true", "yes", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// List is a string list the model may also send as a single scalar, which
// becomes a one-element list. null decodes to an empty list, so a nil List
// means the key was absent.
type List []Value

func (l *List) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = List{}
	case len(b) > 0 && b[0] == '[':
		vs := []Value{}
		if err := json.Unmarshal(b, &vs); err != nil {
			return err
		}
		*l = vs
	default:
		var v Value
		if err := v.UnmarshalJSON(b); err != nil {
			return err
		}
		*l = List{v}
	}
	return nil
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// decodeObject decodes b into v when b is a JSON object. Anything else
// leaves v at its zero value.
func decodeObject(b []byte, v any) error {
	if !isObject(b) {
		return nil
	}
	return json.Unmarshal(b, v)
}

func Strings(vs []Value) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

type PackagedProduct struct {
	ProductInfo         ProductInfo       `json:"product_info"`
	NutritionFacts      PackagedNutrition `json:"nutrition_facts"`
	Ingredients         List              `json:"ingredients"`
	Allergens           List              `json:"allergens"`
	DietaryInfo         DietaryInfo       `json:"dietary_info"`
	StorageInstructions Value             `json:"storage_instructions"`
	ManufacturerInfo    Value             `json:"manufacturer_info"`
}

type ProductInfo struct {
	ProductName Value `json:"product_name"`
	Brand       Value `json:"brand"`
	PackageSize Value `json:"package_size"`
}

func (p *ProductInfo) UnmarshalJSON(b []byte) error {
	type plain ProductInfo
	return decodeObject(b, (*plain)(p))
}

type ServingSize struct {
	Amount               Value `json:"amount"`
	Unit                 Value `json:"unit"`
	ServingsPerContainer Value `json:"servings_per_container"`
}

func (s *ServingSize) UnmarshalJSON(b []byte) error {
	type plain ServingSize
	return decodeObject(b, (*plain)(s))
}

type PackagedNutrition struct {
	ServingSize      ServingSize      `json:"serving_size"`
	Calories         Value            `json:"calories"`
	Macronutrients   PackagedMacros   `json:"macronutrients"`
	VitaminsMinerals PackagedMinerals `json:"vitamins_minerals"`
}

func (n *PackagedNutrition) UnmarshalJSON(b []byte) error {
	type plain PackagedNutrition
	return decodeObject(b, (*plain)(n))
}

// Nutrient is one line of a nutrition facts panel. A nutrient sent as
// something other than an object, null included, still decodes: a scalar
// lands in Amount and Err reports the shape.
type Nutrient struct {
	Amount     Value `json:"amount"`
	Unit       Value `json:"unit"`
	DailyValue Value `json:"daily_value"`

	present bool
	err     error
}

func (n *Nutrient) UnmarshalJSON(b []byte) error {
	n.present = true
	if !isObject(b) {
		if err := n.Amount.UnmarshalJSON(b); err != nil {
			return err
		}
		n.err = fmt.Errorf("nutrient %s is not an object", bytes.TrimSpace(b))
		return nil
	}
	type plain Nutrient
	return json.Unmarshal(b, (*plain)(n))
}

// Present reports whether the nutrient's key appeared in the document.
func (n Nutrient) Present() bool {
	return n.present
}

func (n Nutrient) Err() error {
	return n.err
}

type PackagedMacros struct {
	TotalFat           Nutrient `json:"total_fat"`
	SaturatedFat       Nutrient `json:"saturated_fat"`
	TransFat           Nutrient `json:"trans_fat"`
	Cholesterol        Nutrient `json:"cholesterol"`
	Sodium             Nutrient `json:"sodium"`
	TotalCarbohydrates Nutrient `json:"total_carbohydrates"`
	DietaryFiber       Nutrient `json:"dietary_fiber"`
	TotalSugars        Nutrient `json:"total_sugars"`
	AddedSugars        Nutrient `json:"added_sugars"`
	Protein            Nutrient `json:"protein"`
}

func (m *PackagedMacros) UnmarshalJSON(b []byte) error {
	type plain PackagedMacros
	return decodeObject(b, (*plain)(m))
}

type PackagedMinerals struct {
	VitaminD  Nutrient `json:"vitamin_d"`
	Calcium   Nutrient `json:"calcium"`
	Iron      Nutrient `json:"iron"`
	Potassium Nutrient `json:"potassium"`
}

func (m *PackagedMinerals) UnmarshalJSON(b []byte) error {
	type plain PackagedMinerals
	return decodeObject(b, (*plain)(m))
}

// NamedNutrient pairs a nutrient with its schema key.
type NamedNutrient struct {
	Key string
	Nutrient
}

// List returns the present macronutrients in label order.
func (m PackagedMacros) List() []NamedNutrient {
	return present([]NamedNutrient{
		{"total_fat", m.TotalFat},
		{"saturated_fat", m.SaturatedFat},
		{"trans_fat", m.TransFat},
		{"cholesterol", m.Cholesterol},
		{"sodium", m.Sodium},
		{"total_carbohydrates", m.TotalCarbohydrates},
		{"dietary_fiber", m.DietaryFiber},
		{"total_sugars", m.TotalSugars},
		{"added_sugars", m.AddedSugars},
		{"protein", m.Protein},
	})
}

// List returns the present vitamins and minerals in label order.
func (m PackagedMinerals) List() []NamedNutrient {
	return present([]NamedNutrient{
		{"vitamin_d", m.VitaminD},
		{"calcium", m.Calcium},
		{"iron", m.Iron},
		{"potassium", m.Potassium},
	})
}

func present(all []NamedNutrient) []NamedNutrient {
	out := all[:0]
	for _, n := range all {
		if n.Present() {
			out = append(out, n)
		}
	}
	return out
}

type DietaryInfo struct {
	IsVegetarian Flag `json:"is_vegetarian"`
	IsVegan      Flag `json:"is_vegan"`
	IsGlutenFree Flag `json:"is_gluten_free"`
}

func (d *DietaryInfo) UnmarshalJSON(b []byte) error {
	type plain DietaryInfo
	return decodeObject(b, (*plain)(d))
}

type RawFood struct {
	FoodIdentification     FoodIdentification `json:"food_identification"`
	NutritionalInfo        FoodItems          `json:"nutritional_info"`
	CombinationSuggestions List               `json:"combination_suggestions"`
	SeasonalInfo           json.RawMessage    `json:"seasonal_info"`
}

type FoodIdentification struct {
	Items      List  `json:"items"`
	TotalItems Value `json:"total_items"`
}

func (f *FoodIdentification) UnmarshalJSON(b []byte) error {
	type plain FoodIdentification
	return decodeObject(b, (*plain)(f))
}

// FoodItems is nil when nutritional_info is absent, is not a list, or holds
// an entry that is not an object.
type FoodItems []FoodItem

func (f *FoodItems) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*f = nil
		return nil
	}
	items := []FoodItem{}
	if err := json.Unmarshal(b, &items); err != nil {
		*f = nil
		return nil
	}
	*f = items
	return nil
}

type FoodItem struct {
	FoodName       Value        `json:"food_name"`
	ServingSize    Value        `json:"serving_size"`
	NutritionFacts RawNutrition `json:"nutrition_facts"`
	HealthBenefits List         `json:"health_benefits"`
	StorageTips    List         `json:"storage_tips"`
}

func (f *FoodItem) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		return fmt.Errorf("food item %s is not an object", bytes.TrimSpace(b))
	}
	type plain FoodItem
	return json.Unmarshal(b, (*plain)(f))
}

type RawNutrition struct {
	Calories         Value       `json:"calories"`
	Macronutrients   RawMacros   `json:"macronutrients"`
	VitaminsMinerals RawMinerals `json:"vitamins_minerals"`
}

func (n *RawNutrition) UnmarshalJSON(b []byte) error {
	type plain RawNutrition
	return decodeObject(b, (*plain)(n))
}

type RawMacros struct {
	Protein       Value `json:"protein"`
	Carbohydrates Value `json:"carbohydrates"`
	Fiber         Value `json:"fiber"`
	Sugars        Value `json:"sugars"`
	TotalFat      Value `json:"total_fat"`
}

func (m *RawMacros) UnmarshalJSON(b []byte) error {
	type plain RawMacros
	return decodeObject(b, (*plain)(m))
}

type RawMinerals struct {
	VitaminC  Value `json:"vitamin_c"`
	VitaminA  Value `json:"vitamin_a"`
	Potassium Value `json:"potassium"`
	Calcium   Value `json:"calcium"`
}

func (m *RawMinerals) UnmarshalJSON(b []byte) error {
	type plain RawMinerals
	return decodeObject(b, (*plain)(m))
}
