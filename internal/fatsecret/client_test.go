package fatsecret

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiFixture serves canned responses per API method and records the forms it
// receives.
type apiFixture struct {
	responses map[string]string
	status    int
	forms     []url.Values
}

func newAPIClient(t *testing.T, fx *apiFixture, userToken *UserToken) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		fx.forms = append(fx.forms, r.PostForm)

		if fx.status != 0 {
			w.WriteHeader(fx.status)
			return
		}
		method := r.PostForm.Get("method")
		body, ok := fx.responses[method]
		if !ok {
			t.Errorf("unexpected API method %q", method)
			body = "{}"
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	settings := &Settings{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
		APIBaseURL:     srv.URL + "/rest/server.api",
	}
	return NewClient(settings, userToken, nil)
}

func TestClientIsUserAuthenticated(t *testing.T) {
	settings := &Settings{ConsumerKey: "ckey", ConsumerSecret: "csecret"}

	assert.False(t, NewClient(settings, nil, nil).IsUserAuthenticated())
	assert.False(t, NewClient(settings, &UserToken{}, nil).IsUserAuthenticated())
	assert.True(t, NewClient(settings, &UserToken{Token: "utoken", Secret: "usecret"}, nil).IsUserAuthenticated())
}

func TestSearchFoods(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"foods.search": `{"foods":{
			"food":[{"food_id":"1","food_name":"Apple","food_type":"Generic","food_description":"Per 100g"}],
			"max_results":"20","total_results":"412","page_number":"2"
		}}`,
	}}
	client := newAPIClient(t, fx, nil)

	result, err := client.SearchFoods(context.Background(), "apple", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 412, result.TotalResults)
	assert.Equal(t, 2, result.PageNumber)
	require.Len(t, result.Foods, 1)
	assert.Equal(t, "Apple", result.Foods[0].FoodName)

	// Every call carries the method, format and signature
	require.Len(t, fx.forms, 1)
	form := fx.forms[0]
	assert.Equal(t, "foods.search", form.Get("method"))
	assert.Equal(t, "json", form.Get("format"))
	assert.Equal(t, "apple", form.Get("search_expression"))
	assert.Equal(t, "2", form.Get("page_number"))
	assert.Equal(t, "20", form.Get("max_results"))
	assert.NotEmpty(t, form.Get("oauth_signature"))
	assert.Equal(t, "ckey", form.Get("oauth_consumer_key"))
}

func TestGetFood(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food.get.v4": `{"food":{
			"food_id":"33691","food_name":"Apple","food_type":"Generic",
			"servings":{"serving":{"serving_id":"32915","serving_description":"1 medium","calories":"95"}}
		}}`,
	}}
	client := newAPIClient(t, fx, nil)

	food, err := client.GetFood(context.Background(), 33691)
	require.NoError(t, err)
	assert.Equal(t, "Apple", food.FoodName)
	require.Len(t, food.Servings, 1)
	assert.Equal(t, float64(95), food.Servings[0].Calories.Float())

	assert.Equal(t, "33691", fx.forms[0].Get("food_id"))
}

func TestClientAPIErrorEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedKind APIErrorKind
		expectedCode int
	}{
		{
			name:         "food not found",
			body:         `{"error":{"code":106,"message":"Food not found"}}`,
			expectedKind: APIErrorFoodNotFound,
			expectedCode: 106,
		},
		{
			name:         "recipe not found",
			body:         `{"error":{"code":107,"message":"Recipe not found"}}`,
			expectedKind: APIErrorRecipeNotFound,
			expectedCode: 107,
		},
		{
			name:         "rate limited",
			body:         `{"error":{"code":9,"message":"Too many requests"}}`,
			expectedKind: APIErrorRateLimited,
			expectedCode: 9,
		},
		{
			name:         "string code",
			body:         `{"error":{"code":"9","message":"Too many requests"}}`,
			expectedKind: APIErrorRateLimited,
			expectedCode: 9,
		},
		{
			name:         "unknown code",
			body:         `{"error":{"code":2,"message":"Missing oauth parameters"}}`,
			expectedKind: APIErrorGeneric,
			expectedCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &apiFixture{responses: map[string]string{"foods.search": tt.body}}
			client := newAPIClient(t, fx, nil)

			_, err := client.SearchFoods(context.Background(), "apple", 0, 20)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.expectedKind, apiErr.Kind)
			assert.Equal(t, tt.expectedCode, apiErr.Code)
		})
	}
}

func TestClientHTTP429(t *testing.T) {
	fx := &apiFixture{status: http.StatusTooManyRequests}
	client := newAPIClient(t, fx, nil)

	_, err := client.SearchFoods(context.Background(), "apple", 0, 20)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestClientHTTPError(t *testing.T) {
	fx := &apiFixture{status: http.StatusBadGateway}
	client := newAPIClient(t, fx, nil)

	_, err := client.SearchFoods(context.Background(), "apple", 0, 20)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "HTTP error 502")
}

func TestFindFoodByBarcode(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fx := &apiFixture{responses: map[string]string{
			"food.find_id_for_barcode": `{"food_id":{"value":"33691"}}`,
			"food.get.v4":              `{"food":{"food_id":"33691","food_name":"Granola Bar","food_type":"Brand"}}`,
		}}
		client := newAPIClient(t, fx, nil)

		food, err := client.FindFoodByBarcode(context.Background(), "041220576920")
		require.NoError(t, err)
		assert.Equal(t, "Granola Bar", food.FoodName)

		require.Len(t, fx.forms, 2)
		assert.Equal(t, "041220576920", fx.forms[0].Get("barcode"))
		assert.Equal(t, "33691", fx.forms[1].Get("food_id"))
	})

	t.Run("zero food id means not found", func(t *testing.T) {
		fx := &apiFixture{responses: map[string]string{
			"food.find_id_for_barcode": `{"food_id":{"value":"0"}}`,
		}}
		client := newAPIClient(t, fx, nil)

		_, err := client.FindFoodByBarcode(context.Background(), "000000000000")
		require.Error(t, err)
		kind, ok := errorKind(err)
		require.True(t, ok)
		assert.Equal(t, APIErrorBarcodeNotFound, kind)
	})

	t.Run("error code 106 becomes barcode not found", func(t *testing.T) {
		fx := &apiFixture{responses: map[string]string{
			"food.find_id_for_barcode": `{"error":{"code":106,"message":"Not found"}}`,
		}}
		client := newAPIClient(t, fx, nil)

		_, err := client.FindFoodByBarcode(context.Background(), "000000000000")
		require.Error(t, err)
		kind, ok := errorKind(err)
		require.True(t, ok)
		assert.Equal(t, APIErrorBarcodeNotFound, kind)
	})
}

func TestClientRequiresUserAuth(t *testing.T) {
	client := newAPIClient(t, &apiFixture{}, nil)
	ctx := context.Background()

	_, err := client.GetFoodDiary(ctx, 20690)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = client.AddFoodEntry(ctx, 1, 2, 1, "lunch", -1, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = client.DeleteFoodEntry(ctx, "9876")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = client.GetWeightMonth(ctx, 20690)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = client.UpdateWeight(ctx, 82.5, -1, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestGetFoodDiary(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food_entries.get.v2": `{"food_entries":{"food_entry":[
			{"food_entry_id":"1","food_id":"10","food_entry_name":"Oatmeal","meal":"breakfast","calories":"150"},
			{"food_entry_id":"2","food_id":"20","food_entry_name":"Pasta","meal":"dinner","calories":"420"}
		]}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	diary, err := client.GetFoodDiary(context.Background(), 20690)
	require.NoError(t, err)
	assert.Equal(t, 20690, diary.DateInt)
	require.Len(t, diary.Entries, 2)
	assert.Equal(t, "Oatmeal", diary.Entries[0].FoodEntryName)

	form := fx.forms[0]
	assert.Equal(t, "20690", form.Get("date"))
	// Three-legged call carries the user token
	assert.Equal(t, "utoken", form.Get("oauth_token"))
}

func TestGetFoodDiaryEmpty(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food_entries.get.v2": `{"food_entries":null}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	diary, err := client.GetFoodDiary(context.Background(), 20690)
	require.NoError(t, err)
	assert.Empty(t, diary.Entries)
}

func TestAddFoodEntry(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food_entry.create": `{"food_entry_id":{"value":"987654"}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	entryID, err := client.AddFoodEntry(context.Background(), 33691, 32915, 1.5, "lunch", 20690, "")
	require.NoError(t, err)
	assert.Equal(t, "987654", entryID)

	form := fx.forms[0]
	assert.Equal(t, "33691", form.Get("food_id"))
	assert.Equal(t, "32915", form.Get("serving_id"))
	assert.Equal(t, "1.5", form.Get("number_of_units"))
	assert.Equal(t, "lunch", form.Get("meal"))
	assert.Equal(t, "20690", form.Get("date"))
}

func TestAddFoodEntryDefaultsToToday(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food_entry.create": `{"food_entry_id":{"value":"987654"}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	_, err := client.AddFoodEntry(context.Background(), 33691, 32915, 1, "other", -1, "")
	require.NoError(t, err)

	// Omitting the date lets the API default to today
	assert.False(t, fx.forms[0].Has("date"))
}

func TestDeleteFoodEntry(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"food_entry.delete": `{"success":{"value":"1"}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	require.NoError(t, client.DeleteFoodEntry(context.Background(), "987654"))
	assert.Equal(t, "987654", fx.forms[0].Get("food_entry_id"))
}

func TestGetWeightMonth(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"weights.get_month": `{"month":{"day":{"date_int":"20690","weight_kg":"82.5"}}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	month, err := client.GetWeightMonth(context.Background(), 20690)
	require.NoError(t, err)
	require.Len(t, month.Entries, 1)
	assert.Equal(t, 82.5, month.Entries[0].WeightKg.Float())
}

func TestUpdateWeight(t *testing.T) {
	fx := &apiFixture{responses: map[string]string{
		"weight.update": `{"success":{"value":"1"}}`,
	}}
	client := newAPIClient(t, fx, &UserToken{Token: "utoken", Secret: "usecret"})

	require.NoError(t, client.UpdateWeight(context.Background(), 82.5, 20690, "after run"))

	form := fx.forms[0]
	assert.Equal(t, "82.5", form.Get("current_weight_kg"))
	assert.Equal(t, "20690", form.Get("date"))
	assert.Equal(t, "after run", form.Get("comment"))
}

func TestClientTransportError(t *testing.T) {
	settings := &Settings{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
		APIBaseURL:     "http://127.0.0.1:1/rest/server.api",
	}
	client := NewClient(settings, nil, nil)

	_, err := client.SearchFoods(context.Background(), "apple", 0, 20)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}
