package fatsecret

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// User-facing messages shared by several handlers.
const (
	msgNotConnected = "Error: Not connected to FatSecret.\n" +
		"Use start_authentication to connect your account first."
	msgRateLimited = "Error: API rate limit exceeded. Please try again later."
	msgCloudNoOAuth = "OAuth flow not available on cloud deployment. " +
		"Complete OAuth locally and set FATSECRET_USER_TOKEN and " +
		"FATSECRET_USER_TOKEN_SECRET environment variables."
)

// poundsToKilograms converts lb weigh-ins to the kg the API expects.
const poundsToKilograms = 0.453592

// toolError maps an API error to the tool result text, falling back to the
// given context prefix for anything without a dedicated message.
func toolError(prefix string, err error) *mcp.CallToolResult {
	if errors.Is(err, ErrNotAuthenticated) {
		return mcp.NewToolResultError(msgNotConnected)
	}
	if IsRateLimited(err) {
		return mcp.NewToolResultError(msgRateLimited)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}

// requestArgs extracts the argument map from a tool request.
func requestArgs(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

// optionalString returns the string argument or def when absent.
func optionalString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// optionalInt returns the numeric argument truncated to int, or def when
// absent. JSON numbers arrive as float64.
func optionalInt(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

// parseDateArg resolves an optional YYYY-MM-DD argument to days since the
// epoch and a display label, defaulting to today.
func parseDateArg(args map[string]interface{}, key string) (int, string, error) {
	s := optionalString(args, key, "")
	if s == "" {
		return todayDays(), "today", nil
	}
	days, err := dateToDays(s)
	if err != nil {
		return 0, "", err
	}
	return days, s, nil
}

// handleSearchFoods handles the search_foods tool request
func (m *MCPServer) handleSearchFoods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("missing or invalid 'query' argument"), nil
	}
	page := optionalInt(args, "page", 0)
	maxResults := optionalInt(args, "max_results", 20)

	result, err := m.getClient().SearchFoods(ctx, query, page, maxResults)
	if err != nil {
		return toolError("Error searching foods", err), nil
	}

	return mcp.NewToolResultText(formatFoodSearch(query, result)), nil
}

// handleGetFood handles the get_food tool request
func (m *MCPServer) handleGetFood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	foodIDArg, ok := args["food_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'food_id' argument"), nil
	}
	foodID := int64(foodIDArg)

	food, err := m.getClient().GetFood(ctx, foodID)
	if err != nil {
		if kind, ok := errorKind(err); ok && kind == APIErrorFoodNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Food with ID %d not found.", foodID)), nil
		}
		return toolError("Error retrieving food", err), nil
	}

	return mcp.NewToolResultText(formatFood(food)), nil
}

// handleLookupBarcode handles the lookup_barcode tool request
func (m *MCPServer) handleLookupBarcode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	barcode, ok := args["barcode"].(string)
	if !ok || barcode == "" {
		return mcp.NewToolResultError("missing or invalid 'barcode' argument"), nil
	}

	food, err := m.getClient().FindFoodByBarcode(ctx, barcode)
	if err != nil {
		if kind, ok := errorKind(err); ok && kind == APIErrorBarcodeNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Barcode '%s' not found in database.", barcode)), nil
		}
		return toolError("Error looking up barcode", err), nil
	}

	return mcp.NewToolResultText(formatBarcodeFood(barcode, food)), nil
}

// handleSearchRecipes handles the search_recipes tool request
func (m *MCPServer) handleSearchRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("missing or invalid 'query' argument"), nil
	}
	page := optionalInt(args, "page", 0)
	maxResults := optionalInt(args, "max_results", 20)

	result, err := m.getClient().SearchRecipes(ctx, query, page, maxResults)
	if err != nil {
		return toolError("Error searching recipes", err), nil
	}

	return mcp.NewToolResultText(formatRecipeSearch(query, result)), nil
}

// handleGetRecipe handles the get_recipe tool request
func (m *MCPServer) handleGetRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	recipeIDArg, ok := args["recipe_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'recipe_id' argument"), nil
	}
	recipeID := int64(recipeIDArg)

	recipe, err := m.getClient().GetRecipe(ctx, recipeID)
	if err != nil {
		if kind, ok := errorKind(err); ok && kind == APIErrorRecipeNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Recipe with ID %d not found.", recipeID)), nil
		}
		return toolError("Error retrieving recipe", err), nil
	}

	return mcp.NewToolResultText(formatRecipe(recipe)), nil
}

// handleCheckAuthStatus handles the check_auth_status tool request
func (m *MCPServer) handleCheckAuthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.getClient().IsUserAuthenticated() {
		return mcp.NewToolResultText(
			"Connected: Your FatSecret account is linked.\n" +
				"You can use food diary, weight tracking, and other personal features.",
		), nil
	}
	return mcp.NewToolResultText(
		"Not connected: No FatSecret account is linked.\n" +
			"Use start_authentication to connect your account and enable " +
			"food diary, weight tracking, and other personal features.",
	), nil
}

// handleStartAuthentication handles the start_authentication tool request
func (m *MCPServer) handleStartAuthentication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.flow == nil {
		return mcp.NewToolResultError(msgCloudNoOAuth), nil
	}

	requestToken, err := m.flow.GetRequestToken(ctx, CallbackOutOfBand)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error starting authentication: %v", err)), nil
	}

	authURL := m.flow.AuthorizationURL(requestToken)
	return mcp.NewToolResultText(fmt.Sprintf(
		"To connect your FatSecret account:\n\n"+
			"1. Visit this URL:\n   %s\n\n"+
			"2. Log in to FatSecret and authorize the connection\n\n"+
			"3. Copy the verification code shown\n\n"+
			"4. Use complete_authentication with the code to finish setup",
		authURL,
	)), nil
}

// handleCompleteAuthentication handles the complete_authentication tool request
func (m *MCPServer) handleCompleteAuthentication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.flow == nil {
		return mcp.NewToolResultError(msgCloudNoOAuth), nil
	}

	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}
	verifier, ok := args["verifier"].(string)
	if !ok || verifier == "" {
		return mcp.NewToolResultError("missing or invalid 'verifier' argument"), nil
	}

	if _, err := m.flow.ExchangeForAccessToken(ctx, verifier); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error completing authentication: %v", err)), nil
	}
	if err := m.reinitializeClient(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error completing authentication: %v", err)), nil
	}

	return mcp.NewToolResultText(
		"Success! Your FatSecret account is now connected.\n" +
			"You can now use food diary, weight tracking, and other personal features.",
	), nil
}

// handleDisconnectAccount handles the disconnect_account tool request
func (m *MCPServer) handleDisconnectAccount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := m.store.DeleteUserToken(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error disconnecting account: %v", err)), nil
	}
	if err := m.store.ClearRequestToken(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error disconnecting account: %v", err)), nil
	}
	if err := m.reinitializeClient(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error disconnecting account: %v", err)), nil
	}

	return mcp.NewToolResultText(
		"Disconnected: Your FatSecret account has been unlinked.\n" +
			"Food diary and weight tracking features are no longer available.\n" +
			"Use start_authentication to connect again.",
	), nil
}

// handleGetFoodDiary handles the get_food_diary tool request
func (m *MCPServer) handleGetFoodDiary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := requestArgs(request)

	days, label, err := parseDateArg(args, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	diary, err := m.getClient().GetFoodDiary(ctx, days)
	if err != nil {
		return toolError("Error getting food diary", err), nil
	}

	return mcp.NewToolResultText(formatFoodDiary(label, diary)), nil
}

// handleAddFoodToDiary handles the add_food_to_diary tool request
func (m *MCPServer) handleAddFoodToDiary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	foodIDArg, ok := args["food_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'food_id' argument"), nil
	}
	servingIDArg, ok := args["serving_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'serving_id' argument"), nil
	}
	amount, ok := args["amount"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'amount' argument"), nil
	}
	meal := optionalString(args, "meal", "other")

	date := -1
	if dateStr := optionalString(args, "date", ""); dateStr != "" {
		days, err := dateToDays(dateStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date = days
	}

	foodID := int64(foodIDArg)
	entryID, err := m.getClient().AddFoodEntry(ctx, foodID, int64(servingIDArg), amount, meal, date, "")
	if err != nil {
		if kind, ok := errorKind(err); ok && kind == APIErrorFoodNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Food with ID %d not found.", foodID)), nil
		}
		return toolError("Error adding food entry", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Added to %s: Food entry created (ID: %s)", meal, entryID)), nil
}

// handleDeleteFoodFromDiary handles the delete_food_from_diary tool request
func (m *MCPServer) handleDeleteFoodFromDiary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	entryID, ok := args["food_entry_id"].(string)
	if !ok || entryID == "" {
		return mcp.NewToolResultError("missing or invalid 'food_entry_id' argument"), nil
	}

	if err := m.getClient().DeleteFoodEntry(ctx, entryID); err != nil {
		return toolError("Error deleting food entry", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted food entry %s", entryID)), nil
}

// handleGetWeightHistory handles the get_weight_history tool request
func (m *MCPServer) handleGetWeightHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := requestArgs(request)

	days := todayDays()
	label := "this month"
	if monthStr := optionalString(args, "month", ""); monthStr != "" {
		parsed, err := dateToDays(monthStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		days = parsed
		label = monthStr[:7]
	}

	month, err := m.getClient().GetWeightMonth(ctx, days)
	if err != nil {
		return toolError("Error getting weight history", err), nil
	}

	return mcp.NewToolResultText(formatWeightHistory(label, month)), nil
}

// handleLogWeight handles the log_weight tool request
func (m *MCPServer) handleLogWeight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requestArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	weight, ok := args["weight"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'weight' argument"), nil
	}
	unit := optionalString(args, "unit", "kg")
	comment := optionalString(args, "comment", "")

	date := -1
	label := "today"
	if dateStr := optionalString(args, "date", ""); dateStr != "" {
		days, err := dateToDays(dateStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date = days
		label = dateStr
	}

	weightKg := weight
	if unit == "lb" {
		weightKg = weight * poundsToKilograms
	}

	if err := m.getClient().UpdateWeight(ctx, weightKg, date, comment); err != nil {
		return toolError("Error logging weight", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Logged weight: %s %s for %s",
		strconv.FormatFloat(weight, 'f', -1, 64), unit, label,
	)), nil
}
