package fatsecret

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the wire format for user-facing dates.
const dateLayout = "2006-01-02"

// epochDate anchors FatSecret's integer date encoding: days since
// January 1, 1970.
var epochDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateToDays converts a YYYY-MM-DD string to days since the epoch.
func dateToDays(s string) (int, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return int(d.Sub(epochDate).Hours() / 24), nil
}

// todayDays returns today's date as days since the epoch.
func todayDays() int {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(epochDate).Hours() / 24)
}

// daysToDate converts days since the epoch back to a YYYY-MM-DD string.
func daysToDate(days int) string {
	return epochDate.AddDate(0, 0, days).Format(dateLayout)
}

// formatNumber renders a Number with the shortest exact representation:
// "160" rather than "160.000000".
func formatNumber(n *Number) string {
	return strconv.FormatFloat(n.Float(), 'f', -1, 64)
}

func formatFoodSearch(query string, result *FoodSearchResult) string {
	if len(result.Foods) == 0 {
		return fmt.Sprintf("No foods found matching '%s'.", query)
	}

	sections := []string{fmt.Sprintf(
		"Found %d foods matching '%s' (showing page %d, %d results):\n",
		result.TotalResults, query, result.PageNumber, len(result.Foods),
	)}
	for i, food := range result.Foods {
		brand := ""
		if food.BrandName != "" {
			brand = " - " + food.BrandName
		}
		sections = append(sections, fmt.Sprintf(
			"%d. %s%s\n   ID: %s | Type: %s\n   %s",
			i+1, food.FoodName, brand, food.FoodID, food.FoodType, food.FoodDescription,
		))
	}
	return strings.Join(sections, "\n\n")
}

// servingSummary is the one-line macro summary shared by the food, barcode
// and recipe views.
func servingSummary(calories, protein, carbohydrate, fat *Number) string {
	var nutrients []string
	if calories != nil {
		nutrients = append(nutrients, "Calories: "+formatNumber(calories))
	}
	if protein != nil {
		nutrients = append(nutrients, "Protein: "+formatNumber(protein)+"g")
	}
	if carbohydrate != nil {
		nutrients = append(nutrients, "Carbs: "+formatNumber(carbohydrate)+"g")
	}
	if fat != nil {
		nutrients = append(nutrients, "Fat: "+formatNumber(fat)+"g")
	}
	return strings.Join(nutrients, " | ")
}

func foodServingDetails(s FoodServing) string {
	var details []string
	if s.SaturatedFat != nil {
		details = append(details, "Saturated Fat: "+formatNumber(s.SaturatedFat)+"g")
	}
	if s.TransFat != nil {
		details = append(details, "Trans Fat: "+formatNumber(s.TransFat)+"g")
	}
	if s.Cholesterol != nil {
		details = append(details, "Cholesterol: "+formatNumber(s.Cholesterol)+"mg")
	}
	if s.Sodium != nil {
		details = append(details, "Sodium: "+formatNumber(s.Sodium)+"mg")
	}
	if s.Fiber != nil {
		details = append(details, "Fiber: "+formatNumber(s.Fiber)+"g")
	}
	if s.Sugar != nil {
		details = append(details, "Sugar: "+formatNumber(s.Sugar)+"g")
	}
	return strings.Join(details, ", ")
}

func formatFood(food *Food) string {
	lines := []string{"Food: " + food.FoodName}
	if food.BrandName != "" {
		lines = append(lines, "Brand: "+food.BrandName)
	}
	lines = append(lines, "Type: "+food.FoodType)
	if food.FoodURL != "" {
		lines = append(lines, "URL: "+food.FoodURL)
	}
	lines = append(lines, fmt.Sprintf("\nAvailable Servings (%d):", len(food.Servings)))

	for i, serving := range food.Servings {
		lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, serving.ServingDescription))
		if serving.MetricAmount != nil && serving.MetricUnit != "" {
			lines = append(lines, fmt.Sprintf("   Metric: %s %s", formatNumber(serving.MetricAmount), serving.MetricUnit))
		}
		if summary := servingSummary(serving.Calories, serving.Protein, serving.Carbohydrate, serving.Fat); summary != "" {
			lines = append(lines, "   "+summary)
		}
		if details := foodServingDetails(serving); details != "" {
			lines = append(lines, "   "+details)
		}
	}
	return strings.Join(lines, "\n")
}

func formatBarcodeFood(barcode string, food *Food) string {
	lines := []string{fmt.Sprintf("Barcode: %s\n", barcode), "Food: " + food.FoodName}
	if food.BrandName != "" {
		lines = append(lines, "Brand: "+food.BrandName)
	}
	lines = append(lines, "Type: "+food.FoodType)
	lines = append(lines, fmt.Sprintf("\nAvailable Servings (%d):", len(food.Servings)))

	for i, serving := range food.Servings {
		lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, serving.ServingDescription))
		if summary := servingSummary(serving.Calories, serving.Protein, serving.Carbohydrate, serving.Fat); summary != "" {
			lines = append(lines, "   "+summary)
		}
	}
	return strings.Join(lines, "\n")
}

// recipeInfoLine builds the "Prep | Cook | Servings | Rating" summary.
func recipeInfoLine(prep, cook, servings, rating, ratings *Number) string {
	var info []string
	if prep.Float() != 0 {
		info = append(info, fmt.Sprintf("Prep: %s min", formatNumber(prep)))
	}
	if cook.Float() != 0 {
		info = append(info, fmt.Sprintf("Cook: %s min", formatNumber(cook)))
	}
	if servings.Float() != 0 {
		info = append(info, fmt.Sprintf("Servings: %s", formatNumber(servings)))
	}
	if rating.Float() != 0 {
		if ratings.Float() != 0 {
			info = append(info, fmt.Sprintf("Rating: %.1f/5 (%s ratings)", rating.Float(), formatNumber(ratings)))
		} else {
			info = append(info, fmt.Sprintf("Rating: %.1f/5", rating.Float()))
		}
	}
	return strings.Join(info, " | ")
}

func formatRecipeSearch(query string, result *RecipeSearchResult) string {
	if len(result.Recipes) == 0 {
		return fmt.Sprintf("No recipes found matching '%s'.", query)
	}

	lines := []string{fmt.Sprintf(
		"Found %d recipes matching '%s' (showing page %d, %d results):\n",
		result.TotalResults, query, result.PageNumber, len(result.Recipes),
	)}
	for i, recipe := range result.Recipes {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, recipe.RecipeName))
		lines = append(lines, "   ID: "+recipe.RecipeID)
		if info := recipeInfoLine(recipe.PreparationTime, recipe.CookingTime, recipe.NumberOfServings, recipe.Rating, nil); info != "" {
			lines = append(lines, "   "+info)
		}
		if desc := recipe.RecipeDescription; desc != "" {
			if len(desc) > 100 {
				desc = desc[:97] + "..."
			}
			lines = append(lines, "   "+desc)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatRecipe(recipe *Recipe) string {
	lines := []string{fmt.Sprintf("Recipe: %s\n", recipe.RecipeName)}
	if recipe.RecipeDescription != "" {
		lines = append(lines, recipe.RecipeDescription+"\n")
	}

	if info := recipeInfoLine(recipe.PreparationTime, recipe.CookingTime, recipe.NumberOfServings, recipe.Rating, recipe.NumberOfRatings); info != "" {
		lines = append(lines, info, "")
	}

	if len(recipe.Types) > 0 {
		lines = append(lines, "Types: "+strings.Join(recipe.Types, ", "))
	}
	if len(recipe.Categories) > 0 {
		lines = append(lines, "Categories: "+strings.Join(recipe.Categories, ", "))
	}
	if len(recipe.Types) > 0 || len(recipe.Categories) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("Ingredients (%d):", len(recipe.Ingredients)))
	for i, ingredient := range recipe.Ingredients {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, ingredient.IngredientDescription))
	}
	lines = append(lines, "")

	if len(recipe.Directions) > 0 {
		lines = append(lines, fmt.Sprintf("Directions (%d steps):", len(recipe.Directions)))
		for i, direction := range recipe.Directions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, direction))
		}
		lines = append(lines, "")
	}

	if len(recipe.Servings) > 0 {
		lines = append(lines, "Nutrition Information:")
		for i, serving := range recipe.Servings {
			if len(recipe.Servings) > 1 {
				size := serving.ServingSize
				if size == "" {
					size = fmt.Sprintf("Serving %d", i+1)
				}
				lines = append(lines, "\n"+size+":")
			} else {
				lines = append(lines, "")
			}
			if summary := servingSummary(serving.Calories, serving.Protein, serving.Carbohydrate, serving.Fat); summary != "" {
				lines = append(lines, summary)
			}
			var details []string
			if serving.SaturatedFat != nil {
				details = append(details, "Saturated Fat: "+formatNumber(serving.SaturatedFat)+"g")
			}
			if serving.Sodium != nil {
				details = append(details, "Sodium: "+formatNumber(serving.Sodium)+"mg")
			}
			if serving.Fiber != nil {
				details = append(details, "Fiber: "+formatNumber(serving.Fiber)+"g")
			}
			if serving.Sugar != nil {
				details = append(details, "Sugar: "+formatNumber(serving.Sugar)+"g")
			}
			if len(details) > 0 {
				lines = append(lines, strings.Join(details, ", "))
			}
		}
	}

	if recipe.RecipeURL != "" {
		lines = append(lines, "\nView online: "+recipe.RecipeURL)
	}
	return strings.Join(lines, "\n")
}

// mealOrder fixes the display order of diary meal groups.
var mealOrder = []string{"breakfast", "lunch", "dinner", "other"}

func formatFoodDiary(dateLabel string, diary *FoodDiary) string {
	if len(diary.Entries) == 0 {
		return fmt.Sprintf("No food entries found for %s.", dateLabel)
	}

	meals := map[string][]FoodEntry{}
	for _, entry := range diary.Entries {
		meal := strings.ToLower(entry.Meal)
		switch meal {
		case "breakfast", "lunch", "dinner":
		default:
			meal = "other"
		}
		meals[meal] = append(meals[meal], entry)
	}

	lines := []string{fmt.Sprintf("Food diary for %s:\n", dateLabel)}
	for _, meal := range mealOrder {
		entries := meals[meal]
		if len(entries) == 0 {
			continue
		}
		lines = append(lines, "\n"+capitalize(meal)+":")
		for _, entry := range entries {
			lines = append(lines, "  - "+entry.FoodEntryName)
			var info []string
			if entry.Calories != nil {
				info = append(info, formatNumber(entry.Calories)+" cal")
			}
			if entry.Protein != nil {
				info = append(info, formatNumber(entry.Protein)+"g protein")
			}
			if entry.Carbohydrate != nil {
				info = append(info, formatNumber(entry.Carbohydrate)+"g carbs")
			}
			if entry.Fat != nil {
				info = append(info, formatNumber(entry.Fat)+"g fat")
			}
			if len(info) > 0 {
				lines = append(lines, "    "+strings.Join(info, " | "))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// capitalize upper-cases the first ASCII letter; meal names are all ASCII.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatWeightHistory(monthLabel string, month *WeightMonth) string {
	if len(month.Entries) == 0 {
		return fmt.Sprintf("No weight entries found for %s.", monthLabel)
	}

	lines := []string{"Weight history:\n"}
	for _, entry := range month.Entries {
		weight := ""
		switch {
		case entry.WeightKg != nil && entry.WeightLb != nil:
			weight = fmt.Sprintf("%s kg (%s lb)", formatNumber(entry.WeightKg), formatNumber(entry.WeightLb))
		case entry.WeightKg != nil:
			weight = formatNumber(entry.WeightKg) + " kg"
		case entry.WeightLb != nil:
			weight = formatNumber(entry.WeightLb) + " lb"
		}

		line := fmt.Sprintf("  %s: %s", daysToDate(entry.DateInt.Int()), weight)
		if entry.Comment != "" {
			line += " - " + entry.Comment
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
