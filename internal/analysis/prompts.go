package analysis

// LabelPrompt asks the model whether the photo shows packaging with a
// nutrition label. The answer is read by DetectLabel.
const LabelPrompt = `Analyze this image and determine if it contains a product nutrition label/packaging.
Respond with only 'true' if it contains a product label, or 'false' if it's a raw/unpackaged food item.`

// PackagedPrompt requests the packaged-product schema.
const PackagedPrompt = `Analyze this product label and provide information in the following JSON format.
Extract exact values from the nutrition label. Include units (g, mg, mcg) for all measurements.
{
    "product_info": {
        "product_name": "",
        "brand": "",
        "package_size": ""
    },
    "nutrition_facts": {
        "serving_size": {
            "amount": "",
            "unit": "",
            "servings_per_container": ""
        },
        "calories": "",
        "macronutrients": {
            "total_fat": {"amount": "", "unit": "g", "daily_value": ""},
            "saturated_fat": {"amount": "", "unit": "g", "daily_value": ""},
            "trans_fat": {"amount": "", "unit": "g"},
            "cholesterol": {"amount": "", "unit": "mg", "daily_value": ""},
            "sodium": {"amount": "", "unit": "mg", "daily_value": ""},
            "total_carbohydrates": {"amount": "", "unit": "g", "daily_value": ""},
            "dietary_fiber": {"amount": "", "unit": "g", "daily_value": ""},
            "total_sugars": {"amount": "", "unit": "g"},
            "added_sugars": {"amount": "", "unit": "g", "daily_value": ""},
            "protein": {"amount": "", "unit": "g", "daily_value": ""}
        },
        "vitamins_minerals": {
            "vitamin_d": {"amount": "", "unit": "mcg", "daily_value": ""},
            "calcium": {"amount": "", "unit": "mg", "daily_value": ""},
            "iron": {"amount": "", "unit": "mg", "daily_value": ""},
            "potassium": {"amount": "", "unit": "mg", "daily_value": ""}
        }
    },
    "ingredients": [],
    "allergens": [],
    "dietary_info": {
        "is_vegetarian": false,
        "is_vegan": false,
        "is_gluten_free": false
    },
    "storage_instructions": "",
    "manufacturer_info": ""
}`

// RawPrompt requests the raw-food schema.
const RawPrompt = `Analyze this food image and provide information in the following JSON format:
{
    "food_identification": {
        "items": [],
        "total_items": 0
    },
    "nutritional_info": [
        {
            "food_name": "",
            "serving_size": "",
            "nutrition_facts": {
                "calories": "",
                "macronutrients": {
                    "protein": "",
                    "carbohydrates": "",
                    "fiber": "",
                    "sugars": "",
                    "total_fat": ""
                },
                "vitamins_minerals": {
                    "vitamin_c": "",
                    "vitamin_a": "",
                    "potassium": "",
                    "calcium": ""
                }
            },
            "health_benefits": [],
            "storage_tips": []
        }
    ],
    "combination_suggestions": [],
    "seasonal_info": {}
}`

// SelectPrompt returns the schema prompt for a labelled or unlabelled photo.
func SelectPrompt(hasLabel bool) string {
	if hasLabel {
		return PackagedPrompt
	}
	return RawPrompt
}
