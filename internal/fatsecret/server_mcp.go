package fatsecret

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the FatSecret API as MCP tools over stdio or
// streamable-http.
//
// The client is swapped atomically when the user connects or disconnects an
// account, so in-flight handlers keep the client they started with while new
// calls pick up the new credentials.
type MCPServer struct {
	settings        *Settings
	store           TokenStore
	flow            *FlowManager // nil on cloud deployments
	logger          *Logger
	mcpServer       *server.MCPServer
	serverTransport string

	mu     sync.RWMutex
	client *Client
}

// NewMCPServer creates an MCP server wired to the FatSecret API. The flow may
// be nil when the OAuth handshake is unavailable (cloud deployments); the
// authentication tools then explain how to supply a token instead.
func NewMCPServer(settings *Settings, store TokenStore, flow *FlowManager, serverTransport string, logger *Logger) (*MCPServer, error) {
	userToken, err := store.LoadUserToken()
	if err != nil {
		return nil, fmt.Errorf("load user token: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"fatsecret",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	ms := &MCPServer{
		settings:        settings,
		store:           store,
		flow:            flow,
		logger:          logger,
		mcpServer:       mcpServer,
		serverTransport: serverTransport,
		client:          NewClient(settings, userToken, logger),
	}

	ms.registerTools()

	return ms, nil
}

// Start starts the MCP server using stdio or streamable-http transport
func (m *MCPServer) Start(ctx context.Context, listenAddr string) error {
	switch m.serverTransport {
	case "stdio":
		return server.ServeStdio(m.mcpServer)
	case "streamable-http":
		httpServer := server.NewStreamableHTTPServer(
			m.mcpServer,
			server.WithEndpointPath("/mcp"),
		)
		return httpServer.Start(listenAddr)
	default:
		return fmt.Errorf("unsupported server transport: %s", m.serverTransport)
	}
}

// getClient returns the current API client.
func (m *MCPServer) getClient() *Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// reinitializeClient rebuilds the client from the stored user token. Called
// after the token changes (connect or disconnect).
func (m *MCPServer) reinitializeClient() error {
	userToken, err := m.store.LoadUserToken()
	if err != nil {
		return fmt.Errorf("load user token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = NewClient(m.settings, userToken, m.logger)
	return nil
}

// registerTools registers all MCP tools
func (m *MCPServer) registerTools() {
	// Food tools
	searchFoodsTool := mcp.NewTool("search_foods",
		mcp.WithDescription("Search the FatSecret food database by keyword. Returns food names, descriptions, and IDs that can be used with get_food."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term (e.g., \"apple\", \"chicken breast\", \"whole milk\")"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination, starts at 0"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results per page (1-50, default 20)"),
		),
	)
	m.mcpServer.AddTool(searchFoodsTool, m.handleSearchFoods)

	getFoodTool := mcp.NewTool("get_food",
		mcp.WithDescription("Get detailed nutrition information for a specific food, including all available serving sizes and their nutrient breakdowns."),
		mcp.WithNumber("food_id",
			mcp.Required(),
			mcp.Description("The FatSecret food ID (from search_foods)"),
		),
	)
	m.mcpServer.AddTool(getFoodTool, m.handleGetFood)

	lookupBarcodeTool := mcp.NewTool("lookup_barcode",
		mcp.WithDescription("Find a food by product barcode (UPC/EAN). Returns the same detailed information as get_food."),
		mcp.WithString("barcode",
			mcp.Required(),
			mcp.Description("Product barcode (UPC/EAN, e.g., \"041220576920\")"),
		),
	)
	m.mcpServer.AddTool(lookupBarcodeTool, m.handleLookupBarcode)

	// Recipe tools
	searchRecipesTool := mcp.NewTool("search_recipes",
		mcp.WithDescription("Search the FatSecret recipe database by keyword. Returns recipe names, descriptions, and IDs that can be used with get_recipe."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term (e.g., \"chocolate cake\", \"chicken soup\", \"pasta\")"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination, starts at 0"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results per page (1-50, default 20)"),
		),
	)
	m.mcpServer.AddTool(searchRecipesTool, m.handleSearchRecipes)

	getRecipeTool := mcp.NewTool("get_recipe",
		mcp.WithDescription("Get a full recipe with ingredients, step-by-step directions, and nutrition per serving."),
		mcp.WithNumber("recipe_id",
			mcp.Required(),
			mcp.Description("The FatSecret recipe ID (from search_recipes)"),
		),
	)
	m.mcpServer.AddTool(getRecipeTool, m.handleGetRecipe)

	// Authentication tools
	checkAuthStatusTool := mcp.NewTool("check_auth_status",
		mcp.WithDescription("Check whether a FatSecret user account is connected. User authentication is required for food diary and weight tracking."),
	)
	m.mcpServer.AddTool(checkAuthStatusTool, m.handleCheckAuthStatus)

	startAuthenticationTool := mcp.NewTool("start_authentication",
		mcp.WithDescription("Start the FatSecret account connection process. Returns a URL the user must visit to authorize the connection and obtain a verification code."),
	)
	m.mcpServer.AddTool(startAuthenticationTool, m.handleStartAuthentication)

	completeAuthenticationTool := mcp.NewTool("complete_authentication",
		mcp.WithDescription("Complete the FatSecret account connection using the verification code from the authorization page."),
		mcp.WithString("verifier",
			mcp.Required(),
			mcp.Description("The verification code from FatSecret's authorization page"),
		),
	)
	m.mcpServer.AddTool(completeAuthenticationTool, m.handleCompleteAuthentication)

	disconnectAccountTool := mcp.NewTool("disconnect_account",
		mcp.WithDescription("Disconnect the FatSecret account and remove stored credentials."),
	)
	m.mcpServer.AddTool(disconnectAccountTool, m.handleDisconnectAccount)

	// Food diary tools
	getFoodDiaryTool := mcp.NewTool("get_food_diary",
		mcp.WithDescription("Get food diary entries for a specific date. Requires a connected FatSecret account."),
		mcp.WithString("date",
			mcp.Description("Date in YYYY-MM-DD format (defaults to today)"),
		),
	)
	m.mcpServer.AddTool(getFoodDiaryTool, m.handleGetFoodDiary)

	addFoodToDiaryTool := mcp.NewTool("add_food_to_diary",
		mcp.WithDescription("Log a food item to the food diary. Use search_foods and get_food to find the food_id and serving_id. Requires a connected FatSecret account."),
		mcp.WithNumber("food_id",
			mcp.Required(),
			mcp.Description("The FatSecret food ID (from search_foods or get_food)"),
		),
		mcp.WithNumber("serving_id",
			mcp.Required(),
			mcp.Description("The serving ID (from get_food serving details)"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Number of servings (e.g., 1.5 for 1.5 servings)"),
		),
		mcp.WithString("meal",
			mcp.Description("Meal type - \"breakfast\", \"lunch\", \"dinner\", or \"other\""),
		),
		mcp.WithString("date",
			mcp.Description("Date in YYYY-MM-DD format (defaults to today)"),
		),
	)
	m.mcpServer.AddTool(addFoodToDiaryTool, m.handleAddFoodToDiary)

	deleteFoodFromDiaryTool := mcp.NewTool("delete_food_from_diary",
		mcp.WithDescription("Delete a food entry from the diary. Use get_food_diary to find entry IDs. Requires a connected FatSecret account."),
		mcp.WithString("food_entry_id",
			mcp.Required(),
			mcp.Description("The food entry ID to delete (from get_food_diary)"),
		),
	)
	m.mcpServer.AddTool(deleteFoodFromDiaryTool, m.handleDeleteFoodFromDiary)

	// Weight tracking tools
	getWeightHistoryTool := mcp.NewTool("get_weight_history",
		mcp.WithDescription("Get all weight entries logged during a month. Requires a connected FatSecret account."),
		mcp.WithString("month",
			mcp.Description("Any date in the month (YYYY-MM-DD format), defaults to current month"),
		),
	)
	m.mcpServer.AddTool(getWeightHistoryTool, m.handleGetWeightHistory)

	logWeightTool := mcp.NewTool("log_weight",
		mcp.WithDescription("Record a weight entry for tracking progress. Requires a connected FatSecret account."),
		mcp.WithNumber("weight",
			mcp.Required(),
			mcp.Description("Weight value"),
		),
		mcp.WithString("unit",
			mcp.Description("Unit of measurement - \"kg\" or \"lb\""),
		),
		mcp.WithString("date",
			mcp.Description("Date in YYYY-MM-DD format (defaults to today)"),
		),
		mcp.WithString("comment",
			mcp.Description("Optional note for this entry"),
		),
	)
	m.mcpServer.AddTool(logWeightTool, m.handleLogWeight)
}
