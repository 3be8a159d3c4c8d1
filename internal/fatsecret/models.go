package fatsecret

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a float64 that unmarshals from either a JSON number or a quoted
// numeric string. FatSecret serializes virtually every numeric field as a
// string ("calories": "160"), but the decoder stays tolerant of bare numbers.
type Number float64

// UnmarshalJSON accepts "1.5", 1.5, "" and null; the last two leave the value
// at zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns the underlying float64, 0 for a nil pointer.
func (n *Number) Float() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

// Int returns the truncated integer value, 0 for a nil pointer.
func (n *Number) Int() int {
	return int(n.Float())
}

// List is a slice that unmarshals from either a JSON array or a single bare
// object. FatSecret collapses one-element collections to the element itself:
// "serving": {...} instead of "serving": [{...}].
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = List[T]{single}
	return nil
}

// FoodServing is one serving option of a food, with per-serving nutrition.
// Nutrient fields are pointers so absent values are distinguishable from zero.
type FoodServing struct {
	ServingID          string  `json:"serving_id"`
	ServingDescription string  `json:"serving_description"`
	MetricAmount       *Number `json:"metric_serving_amount"`
	MetricUnit         string  `json:"metric_serving_unit"`
	Calories           *Number `json:"calories"`
	Carbohydrate       *Number `json:"carbohydrate"`
	Protein            *Number `json:"protein"`
	Fat                *Number `json:"fat"`
	SaturatedFat       *Number `json:"saturated_fat"`
	TransFat           *Number `json:"trans_fat"`
	Fiber              *Number `json:"fiber"`
	Sugar              *Number `json:"sugar"`
	Sodium             *Number `json:"sodium"`
	Cholesterol        *Number `json:"cholesterol"`
	Potassium          *Number `json:"potassium"`
}

// Food is a full food record from food.get, with the nested servings wrapper
// flattened into a slice.
type Food struct {
	FoodID    string `json:"food_id"`
	FoodName  string `json:"food_name"`
	FoodType  string `json:"food_type"`
	BrandName string `json:"brand_name"`
	FoodURL   string `json:"food_url"`
	Servings  []FoodServing
}

func (f *Food) UnmarshalJSON(data []byte) error {
	type alias Food
	aux := struct {
		*alias
		ServingsWrapper *struct {
			Serving List[FoodServing] `json:"serving"`
		} `json:"servings"`
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ServingsWrapper != nil {
		f.Servings = aux.ServingsWrapper.Serving
	}
	return nil
}

// FoodSearchItem is one result row from foods.search.
type FoodSearchItem struct {
	FoodID          string `json:"food_id"`
	FoodName        string `json:"food_name"`
	FoodType        string `json:"food_type"`
	BrandName       string `json:"brand_name"`
	FoodDescription string `json:"food_description"`
}

// FoodSearchResult is a page of food search results.
type FoodSearchResult struct {
	Foods        []FoodSearchItem
	MaxResults   int
	TotalResults int
	PageNumber   int
}

func (r *FoodSearchResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		Food         List[FoodSearchItem] `json:"food"`
		MaxResults   Number               `json:"max_results"`
		TotalResults Number               `json:"total_results"`
		PageNumber   Number               `json:"page_number"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Foods = aux.Food
	r.MaxResults = aux.MaxResults.Int()
	r.TotalResults = aux.TotalResults.Int()
	r.PageNumber = aux.PageNumber.Int()
	return nil
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	FoodID                 string  `json:"food_id"`
	FoodName               string  `json:"food_name"`
	IngredientDescription  string  `json:"ingredient_description"`
	NumberOfUnits          *Number `json:"number_of_units"`
	MeasurementDescription string  `json:"measurement_description"`
}

// RecipeServing holds per-serving nutrition for a recipe.
type RecipeServing struct {
	ServingSize  string  `json:"serving_size"`
	Calories     *Number `json:"calories"`
	Carbohydrate *Number `json:"carbohydrate"`
	Protein      *Number `json:"protein"`
	Fat          *Number `json:"fat"`
	SaturatedFat *Number `json:"saturated_fat"`
	Fiber        *Number `json:"fiber"`
	Sugar        *Number `json:"sugar"`
	Sodium       *Number `json:"sodium"`
}

// recipeDirection is one numbered preparation step.
type recipeDirection struct {
	DirectionNumber      Number `json:"direction_number"`
	DirectionDescription string `json:"direction_description"`
}

// Recipe is a full recipe record from recipe.get, with the nested wrapper
// objects flattened.
type Recipe struct {
	RecipeID          string  `json:"recipe_id"`
	RecipeName        string  `json:"recipe_name"`
	RecipeDescription string  `json:"recipe_description"`
	RecipeURL         string  `json:"recipe_url"`
	NumberOfServings  *Number `json:"number_of_servings"`
	PreparationTime   *Number `json:"preparation_time_min"`
	CookingTime       *Number `json:"cooking_time_min"`
	Rating            *Number `json:"rating"`
	NumberOfRatings   *Number `json:"number_of_ratings"`
	Types             []string
	Categories        []string
	Ingredients       []RecipeIngredient
	Directions        []string
	Servings          []RecipeServing
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	type alias Recipe
	aux := struct {
		*alias
		TypesWrapper *struct {
			RecipeType List[string] `json:"recipe_type"`
		} `json:"recipe_types"`
		CategoriesWrapper *struct {
			RecipeCategory List[struct {
				Name string `json:"recipe_category_name"`
			}] `json:"recipe_category"`
		} `json:"recipe_categories"`
		IngredientsWrapper *struct {
			Ingredient List[RecipeIngredient] `json:"ingredient"`
		} `json:"ingredients"`
		DirectionsWrapper *struct {
			Direction List[recipeDirection] `json:"direction"`
		} `json:"directions"`
		ServingsWrapper *struct {
			Serving List[RecipeServing] `json:"serving"`
		} `json:"serving_sizes"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TypesWrapper != nil {
		r.Types = aux.TypesWrapper.RecipeType
	}
	if aux.CategoriesWrapper != nil {
		for _, c := range aux.CategoriesWrapper.RecipeCategory {
			r.Categories = append(r.Categories, c.Name)
		}
	}
	if aux.IngredientsWrapper != nil {
		r.Ingredients = aux.IngredientsWrapper.Ingredient
	}
	if aux.DirectionsWrapper != nil {
		for _, d := range aux.DirectionsWrapper.Direction {
			r.Directions = append(r.Directions, d.DirectionDescription)
		}
	}
	if aux.ServingsWrapper != nil {
		r.Servings = aux.ServingsWrapper.Serving
	}
	return nil
}

// RecipeSearchItem is one result row from recipes.search.
type RecipeSearchItem struct {
	RecipeID          string  `json:"recipe_id"`
	RecipeName        string  `json:"recipe_name"`
	RecipeDescription string  `json:"recipe_description"`
	PreparationTime   *Number `json:"preparation_time_min"`
	CookingTime       *Number `json:"cooking_time_min"`
	NumberOfServings  *Number `json:"number_of_servings"`
	Rating            *Number `json:"rating"`
}

// RecipeSearchResult is a page of recipe search results.
type RecipeSearchResult struct {
	Recipes      []RecipeSearchItem
	MaxResults   int
	TotalResults int
	PageNumber   int
}

func (r *RecipeSearchResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		Recipe       List[RecipeSearchItem] `json:"recipe"`
		MaxResults   Number                 `json:"max_results"`
		TotalResults Number                 `json:"total_results"`
		PageNumber   Number                 `json:"page_number"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Recipes = aux.Recipe
	r.MaxResults = aux.MaxResults.Int()
	r.TotalResults = aux.TotalResults.Int()
	r.PageNumber = aux.PageNumber.Int()
	return nil
}

// FoodEntry is one logged food in the user's diary. Unlike food.get, the
// diary API returns nutrition flat on the entry.
type FoodEntry struct {
	FoodEntryID          string  `json:"food_entry_id"`
	FoodID               string  `json:"food_id"`
	FoodEntryName        string  `json:"food_entry_name"`
	FoodEntryDescription string  `json:"food_entry_description"`
	Meal                 string  `json:"meal"`
	ServingID            string  `json:"serving_id"`
	NumberOfUnits        *Number `json:"number_of_units"`
	Calories             *Number `json:"calories"`
	Fat                  *Number `json:"fat"`
	Carbohydrate         *Number `json:"carbohydrate"`
	Protein              *Number `json:"protein"`
	Sodium               *Number `json:"sodium"`
	Sugar                *Number `json:"sugar"`
	DateInt              *Number `json:"date_int"`
}

// FoodDiary is one day of diary entries.
type FoodDiary struct {
	Entries []FoodEntry
	DateInt int
}

// WeightEntry is one weigh-in from the user's weight history.
type WeightEntry struct {
	DateInt    *Number `json:"date_int"`
	WeightKg   *Number `json:"weight_kg"`
	WeightLb   *Number `json:"weight_lb"`
	Comment    string  `json:"weight_comment"`
	WeightType string  `json:"weight_type"`
}

// WeightMonth is a month of weigh-ins from weights.get_month.
type WeightMonth struct {
	Entries []WeightEntry
}

func (w *WeightMonth) UnmarshalJSON(data []byte) error {
	var aux struct {
		Day List[WeightEntry] `json:"day"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.Entries = aux.Day
	return nil
}
