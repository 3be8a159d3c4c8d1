package fatsecret

import (
	"encoding/json"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "quoted integer", input: `"160"`, expected: 160},
		{name: "quoted decimal", input: `"3.5"`, expected: 3.5},
		{name: "bare number", input: `42.25`, expected: 42.25},
		{name: "quoted negative", input: `"-1.5"`, expected: -1.5},
		{name: "null leaves zero", input: `null`, expected: 0},
		{name: "empty string leaves zero", input: `""`, expected: 0},
		{name: "non-numeric string fails", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			if float64(n) != tt.expected {
				t.Errorf("got %v, want %v", float64(n), tt.expected)
			}
		})
	}
}

func TestNumberHelpers(t *testing.T) {
	var nilNumber *Number
	if nilNumber.Float() != 0 || nilNumber.Int() != 0 {
		t.Error("nil Number must read as zero")
	}

	n := Number(12.9)
	if n.Float() != 12.9 {
		t.Errorf("Float() = %v", n.Float())
	}
	if n.Int() != 12 {
		t.Errorf("Int() = %v, want truncation", n.Int())
	}
}

func TestListUnmarshal(t *testing.T) {
	t.Run("array stays a slice", func(t *testing.T) {
		var l List[string]
		if err := json.Unmarshal([]byte(`["a","b"]`), &l); err != nil {
			t.Fatal(err)
		}
		if len(l) != 2 || l[0] != "a" || l[1] != "b" {
			t.Errorf("got %v", l)
		}
	})

	t.Run("single object becomes one-element slice", func(t *testing.T) {
		var l List[FoodSearchItem]
		if err := json.Unmarshal([]byte(`{"food_id":"1","food_name":"Apple"}`), &l); err != nil {
			t.Fatal(err)
		}
		if len(l) != 1 || l[0].FoodName != "Apple" {
			t.Errorf("got %v", l)
		}
	})

	t.Run("null becomes nil", func(t *testing.T) {
		var l List[string]
		if err := json.Unmarshal([]byte(`null`), &l); err != nil {
			t.Fatal(err)
		}
		if l != nil {
			t.Errorf("got %v", l)
		}
	})
}

func TestFoodUnmarshalFlattensServings(t *testing.T) {
	payload := `{
		"food_id": "33691",
		"food_name": "Apple",
		"food_type": "Generic",
		"food_url": "https://www.fatsecret.com/calories-nutrition/generic/apple",
		"servings": {
			"serving": [
				{
					"serving_id": "32915",
					"serving_description": "1 medium",
					"metric_serving_amount": "182.0",
					"metric_serving_unit": "g",
					"calories": "95",
					"protein": "0.47",
					"carbohydrate": "25.13",
					"fat": "0.31"
				},
				{
					"serving_id": "32916",
					"serving_description": "100 g",
					"calories": "52"
				}
			]
		}
	}`

	var food Food
	if err := json.Unmarshal([]byte(payload), &food); err != nil {
		t.Fatal(err)
	}
	if food.FoodName != "Apple" {
		t.Errorf("food_name = %q", food.FoodName)
	}
	if len(food.Servings) != 2 {
		t.Fatalf("expected 2 servings, got %d", len(food.Servings))
	}
	first := food.Servings[0]
	if first.ServingDescription != "1 medium" {
		t.Errorf("serving_description = %q", first.ServingDescription)
	}
	if first.Calories.Float() != 95 {
		t.Errorf("calories = %v", first.Calories.Float())
	}
	if first.MetricAmount.Float() != 182 {
		t.Errorf("metric amount = %v", first.MetricAmount.Float())
	}
	if food.Servings[1].Protein != nil {
		t.Error("expected absent nutrient to stay nil")
	}
}

func TestFoodUnmarshalSingleServing(t *testing.T) {
	payload := `{
		"food_id": "1",
		"food_name": "Salt",
		"food_type": "Generic",
		"servings": {
			"serving": {"serving_id": "10", "serving_description": "1 tsp", "calories": "0"}
		}
	}`

	var food Food
	if err := json.Unmarshal([]byte(payload), &food); err != nil {
		t.Fatal(err)
	}
	if len(food.Servings) != 1 || food.Servings[0].ServingID != "10" {
		t.Errorf("got %+v", food.Servings)
	}
}

func TestFoodSearchResultUnmarshal(t *testing.T) {
	payload := `{
		"food": [
			{"food_id": "1", "food_name": "Apple", "food_type": "Generic", "food_description": "Per 100g - Calories: 52kcal"},
			{"food_id": "2", "food_name": "Apple Juice", "food_type": "Brand", "brand_name": "Motts", "food_description": "Per 1 cup"}
		],
		"max_results": "20",
		"total_results": "1234",
		"page_number": "0"
	}`

	var result FoodSearchResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Foods) != 2 {
		t.Fatalf("expected 2 foods, got %d", len(result.Foods))
	}
	if result.TotalResults != 1234 || result.MaxResults != 20 || result.PageNumber != 0 {
		t.Errorf("counts = %d/%d/%d", result.TotalResults, result.MaxResults, result.PageNumber)
	}
	if result.Foods[1].BrandName != "Motts" {
		t.Errorf("brand = %q", result.Foods[1].BrandName)
	}
}

func TestRecipeUnmarshalFlattensWrappers(t *testing.T) {
	payload := `{
		"recipe_id": "91",
		"recipe_name": "Baked Apples",
		"recipe_description": "Simple baked apples.",
		"recipe_url": "https://www.fatsecret.com/recipes/baked-apples",
		"number_of_servings": "4",
		"preparation_time_min": "10",
		"cooking_time_min": "30",
		"rating": "4",
		"recipe_types": {"recipe_type": "Dessert"},
		"recipe_categories": {"recipe_category": [{"recipe_category_name": "Fruit"}, {"recipe_category_name": "Baking"}]},
		"ingredients": {"ingredient": [
			{"food_id": "33691", "food_name": "Apple", "ingredient_description": "4 apples"},
			{"food_id": "123", "food_name": "Cinnamon", "ingredient_description": "1 tsp cinnamon"}
		]},
		"directions": {"direction": [
			{"direction_number": "1", "direction_description": "Core the apples."},
			{"direction_number": "2", "direction_description": "Bake for 30 minutes."}
		]},
		"serving_sizes": {"serving": {"serving_size": "1 apple", "calories": "120", "protein": "0.5", "saturated_fat": "1.2"}}
	}`

	var recipe Recipe
	if err := json.Unmarshal([]byte(payload), &recipe); err != nil {
		t.Fatal(err)
	}
	if recipe.RecipeName != "Baked Apples" {
		t.Errorf("name = %q", recipe.RecipeName)
	}
	if len(recipe.Types) != 1 || recipe.Types[0] != "Dessert" {
		t.Errorf("types = %v", recipe.Types)
	}
	if len(recipe.Categories) != 2 || recipe.Categories[1] != "Baking" {
		t.Errorf("categories = %v", recipe.Categories)
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0].IngredientDescription != "4 apples" {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}
	if len(recipe.Directions) != 2 || recipe.Directions[1] != "Bake for 30 minutes." {
		t.Errorf("directions = %v", recipe.Directions)
	}
	if len(recipe.Servings) != 1 || recipe.Servings[0].Calories.Float() != 120 {
		t.Errorf("servings = %v", recipe.Servings)
	}
	if recipe.Servings[0].SaturatedFat.Float() != 1.2 {
		t.Errorf("saturated_fat = %v", recipe.Servings[0].SaturatedFat.Float())
	}
	if recipe.NumberOfServings.Float() != 4 {
		t.Errorf("number_of_servings = %v", recipe.NumberOfServings.Float())
	}
}

func TestFoodEntryUnmarshal(t *testing.T) {
	payload := `{
		"food_entry_id": "9876",
		"food_id": "33691",
		"food_entry_name": "Apple",
		"food_entry_description": "1 medium apple",
		"meal": "breakfast",
		"serving_id": "32915",
		"number_of_units": "1.5",
		"calories": "142",
		"protein": "0.7",
		"carbohydrate": "37.7",
		"fat": "0.46",
		"date_int": "20690"
	}`

	var entry FoodEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.FoodEntryID != "9876" || entry.Meal != "breakfast" {
		t.Errorf("got %+v", entry)
	}
	if entry.NumberOfUnits.Float() != 1.5 {
		t.Errorf("number_of_units = %v", entry.NumberOfUnits.Float())
	}
	if entry.Calories.Float() != 142 {
		t.Errorf("calories = %v", entry.Calories.Float())
	}
	if entry.DateInt.Int() != 20690 {
		t.Errorf("date_int = %v", entry.DateInt.Int())
	}
}

func TestWeightMonthUnmarshal(t *testing.T) {
	t.Run("multiple days", func(t *testing.T) {
		payload := `{"day": [
			{"date_int": "20690", "weight_kg": "82.5", "weight_lb": "181.9"},
			{"date_int": "20693", "weight_kg": "82.1", "weight_comment": "after run"}
		]}`

		var month WeightMonth
		if err := json.Unmarshal([]byte(payload), &month); err != nil {
			t.Fatal(err)
		}
		if len(month.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(month.Entries))
		}
		if month.Entries[0].WeightKg.Float() != 82.5 {
			t.Errorf("weight = %v", month.Entries[0].WeightKg.Float())
		}
		if month.Entries[1].Comment != "after run" {
			t.Errorf("comment = %q", month.Entries[1].Comment)
		}
	})

	t.Run("single day collapses", func(t *testing.T) {
		payload := `{"day": {"date_int": "20690", "weight_kg": "82.5"}}`

		var month WeightMonth
		if err := json.Unmarshal([]byte(payload), &month); err != nil {
			t.Fatal(err)
		}
		if len(month.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(month.Entries))
		}
	})
}
