package fatsecret

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// apiRequestTimeout bounds each API HTTP call.
	apiRequestTimeout = 30 * time.Second

	// maxAPIResponseSize caps API response bodies; food and recipe payloads
	// are at most tens of kilobytes.
	maxAPIResponseSize = 4 * 1024 * 1024
)

// FatSecret API method names.
const (
	methodFoodsSearch     = "foods.search"
	methodFoodGet         = "food.get.v4"
	methodBarcodeFind     = "food.find_id_for_barcode"
	methodRecipesSearch   = "recipes.search.v3"
	methodRecipeGet       = "recipe.get.v2"
	methodFoodEntriesGet  = "food_entries.get.v2"
	methodFoodEntryCreate = "food_entry.create"
	methodFoodEntryDelete = "food_entry.delete"
	methodWeightsGetMonth = "weights.get_month"
	methodWeightUpdate    = "weight.update"
)

// Client calls the FatSecret REST API. Every request goes through the single
// server.api endpoint as a signed form POST with a "method" parameter. With a
// user token the client signs three-legged and can reach diary and weight
// endpoints; without one it signs two-legged and only public catalog methods
// work.
//
// A Client is immutable after construction and safe for concurrent use.
type Client struct {
	settings   *Settings
	signer     *Signer
	httpClient *http.Client
	userAuth   bool
	logger     *Logger
}

// NewClient creates an API client. A nil userToken yields a two-legged client
// restricted to public methods.
func NewClient(settings *Settings, userToken *UserToken, logger *Logger) *Client {
	var signer *Signer
	userAuth := userToken != nil && userToken.Token != ""
	if userAuth {
		signer = NewUserSigner(settings.ConsumerKey, settings.ConsumerSecret, userToken.Token, userToken.Secret)
	} else {
		signer = NewSigner(settings.ConsumerKey, settings.ConsumerSecret)
	}
	return &Client{
		settings:   settings,
		signer:     signer,
		httpClient: &http.Client{Timeout: apiRequestTimeout},
		userAuth:   userAuth,
		logger:     logger,
	}
}

// IsUserAuthenticated reports whether the client carries a user token.
func (c *Client) IsUserAuthenticated() bool { return c.userAuth }

func (c *Client) requireUserAuth() error {
	if !c.userAuth {
		return ErrNotAuthenticated
	}
	return nil
}

// call signs and POSTs one API method, checks the error envelope, and returns
// the raw JSON body for the caller to decode.
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	all := make(map[string]string, len(params)+2)
	for k, v := range params {
		all[k] = v
	}
	all["method"] = method
	all["format"] = "json"

	// Trace before signing so OAuth credentials stay out of the log.
	c.logger.Request(method, params)

	signed := c.signer.Sign(c.settings.APIBaseURL, http.MethodPost, all)
	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.APIBaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{Kind: APIErrorRateLimited, Message: "rate limit exceeded"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Message: fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var envelope struct {
		Error *struct {
			Code    Number `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return nil, decodeAPIError(envelope.Error.Code.Int(), envelope.Error.Message)
	}

	c.logger.Response(method, body)
	return body, nil
}

// SearchFoods searches the food catalog. page is zero-based; maxResults is
// capped by the API at 50.
func (c *Client) SearchFoods(ctx context.Context, query string, page, maxResults int) (*FoodSearchResult, error) {
	body, err := c.call(ctx, methodFoodsSearch, map[string]string{
		"search_expression": query,
		"page_number":       strconv.Itoa(page),
		"max_results":       strconv.Itoa(maxResults),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Foods FoodSearchResult `json:"foods"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodFoodsSearch, err)
	}
	return &resp.Foods, nil
}

// GetFood fetches a full food record with all its servings.
func (c *Client) GetFood(ctx context.Context, foodID int64) (*Food, error) {
	body, err := c.call(ctx, methodFoodGet, map[string]string{
		"food_id": strconv.FormatInt(foodID, 10),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Food Food `json:"food"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodFoodGet, err)
	}
	return &resp.Food, nil
}

// FindFoodByBarcode resolves a UPC/EAN barcode to its food record. The API
// reports an unknown barcode with error code 106 or with food_id 0; both
// surface as a barcode-not-found APIError.
func (c *Client) FindFoodByBarcode(ctx context.Context, barcode string) (*Food, error) {
	body, err := c.call(ctx, methodBarcodeFind, map[string]string{
		"barcode": barcode,
	})
	if err != nil {
		// Code 106 means "not found" here, not a missing food record.
		if kind, ok := errorKind(err); ok && kind == APIErrorFoodNotFound {
			return nil, &APIError{Kind: APIErrorBarcodeNotFound, Code: codeBarcodeNotFound, Message: fmt.Sprintf("barcode %s not found", barcode)}
		}
		return nil, err
	}
	var resp struct {
		FoodID struct {
			Value Number `json:"value"`
		} `json:"food_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodBarcodeFind, err)
	}
	foodID := int64(resp.FoodID.Value)
	if foodID == 0 {
		return nil, &APIError{Kind: APIErrorBarcodeNotFound, Code: codeBarcodeNotFound, Message: fmt.Sprintf("barcode %s not found", barcode)}
	}
	return c.GetFood(ctx, foodID)
}

// SearchRecipes searches the recipe catalog.
func (c *Client) SearchRecipes(ctx context.Context, query string, page, maxResults int) (*RecipeSearchResult, error) {
	body, err := c.call(ctx, methodRecipesSearch, map[string]string{
		"search_expression": query,
		"page_number":       strconv.Itoa(page),
		"max_results":       strconv.Itoa(maxResults),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Recipes RecipeSearchResult `json:"recipes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodRecipesSearch, err)
	}
	return &resp.Recipes, nil
}

// GetRecipe fetches a full recipe record with ingredients and directions.
func (c *Client) GetRecipe(ctx context.Context, recipeID int64) (*Recipe, error) {
	body, err := c.call(ctx, methodRecipeGet, map[string]string{
		"recipe_id": strconv.FormatInt(recipeID, 10),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Recipe Recipe `json:"recipe"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodRecipeGet, err)
	}
	return &resp.Recipe, nil
}

// GetFoodDiary fetches the user's diary entries for one day, given as days
// since 1970-01-01. Requires user authentication.
func (c *Client) GetFoodDiary(ctx context.Context, date int) (*FoodDiary, error) {
	if err := c.requireUserAuth(); err != nil {
		return nil, err
	}
	body, err := c.call(ctx, methodFoodEntriesGet, map[string]string{
		"date": strconv.Itoa(date),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		FoodEntries struct {
			FoodEntry List[FoodEntry] `json:"food_entry"`
		} `json:"food_entries"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodFoodEntriesGet, err)
	}
	return &FoodDiary{Entries: resp.FoodEntries.FoodEntry, DateInt: date}, nil
}

// AddFoodEntry logs a food to the user's diary and returns the new entry ID.
// A negative date means today (the parameter is omitted); an empty name lets
// the API use the food's own name. Requires user authentication.
func (c *Client) AddFoodEntry(ctx context.Context, foodID, servingID int64, units float64, meal string, date int, name string) (string, error) {
	if err := c.requireUserAuth(); err != nil {
		return "", err
	}
	params := map[string]string{
		"food_id":         strconv.FormatInt(foodID, 10),
		"serving_id":      strconv.FormatInt(servingID, 10),
		"number_of_units": strconv.FormatFloat(units, 'f', -1, 64),
		"meal":            meal,
	}
	if date >= 0 {
		params["date"] = strconv.Itoa(date)
	}
	if name != "" {
		params["food_entry_name"] = name
	}
	body, err := c.call(ctx, methodFoodEntryCreate, params)
	if err != nil {
		return "", err
	}
	var resp struct {
		FoodEntryID struct {
			Value string `json:"value"`
		} `json:"food_entry_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", methodFoodEntryCreate, err)
	}
	return resp.FoodEntryID.Value, nil
}

// DeleteFoodEntry removes a diary entry. Requires user authentication.
func (c *Client) DeleteFoodEntry(ctx context.Context, entryID string) error {
	if err := c.requireUserAuth(); err != nil {
		return err
	}
	_, err := c.call(ctx, methodFoodEntryDelete, map[string]string{
		"food_entry_id": entryID,
	})
	return err
}

// GetWeightMonth fetches the weigh-ins for the month containing the given
// day (days since 1970-01-01). Requires user authentication.
func (c *Client) GetWeightMonth(ctx context.Context, date int) (*WeightMonth, error) {
	if err := c.requireUserAuth(); err != nil {
		return nil, err
	}
	body, err := c.call(ctx, methodWeightsGetMonth, map[string]string{
		"date": strconv.Itoa(date),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Month WeightMonth `json:"month"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", methodWeightsGetMonth, err)
	}
	return &resp.Month, nil
}

// UpdateWeight records the user's weight in kilograms for the given day. A
// negative date means today. Requires user authentication.
func (c *Client) UpdateWeight(ctx context.Context, weightKg float64, date int, comment string) error {
	if err := c.requireUserAuth(); err != nil {
		return err
	}
	params := map[string]string{
		"current_weight_kg": strconv.FormatFloat(weightKg, 'f', -1, 64),
	}
	if date >= 0 {
		params["date"] = strconv.Itoa(date)
	}
	if comment != "" {
		params["comment"] = comment
	}
	_, err := c.call(ctx, methodWeightUpdate, params)
	return err
}
