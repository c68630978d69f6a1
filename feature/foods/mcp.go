package foods

import (
	"encoding/json"
	"fmt"

	"food-index/core/logger"
	"food-index/core/utils"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gofiber/fiber/v2"
)

// SearchFoodsTool is the MCP tool name for food search.
const SearchFoodsTool = "search_foods"

// ToolInfo describes an MCP tool served by HandleMCPTools.
type ToolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Arguments   map[string]string `json:"arguments"`
}

var tools = []ToolInfo{{
	Name:        SearchFoodsTool,
	Description: "Search the food database of a locale by description",
	Arguments: map[string]string{
		"locale":      "Locale id, e.g. en_GB (required)",
		"description": "Search text (required)",
		"limit":       "Maximum number of foods",
		"isRecipe":    "Search for recipe ingredients",
	},
}}

// RegisterMCPRoutes registers the MCP tool endpoint.
func (h *Handler) RegisterMCPRoutes(app fiber.Router) {
	app.Get("/mcp", h.HandleMCPTools)
	app.Post("/mcp", h.HandleMCP)
}

// HandleMCPTools lists the MCP tools.
// @Summary List MCP Tools
// @Tags mcp
// @Produce json
// @Success 200 {array} ToolInfo
// @Router /mcp [get]
func (h *Handler) HandleMCPTools(c *fiber.Ctx) error {
	return c.JSON(tools)
}

// HandleMCP executes an MCP tool call.
// @Summary Call MCP Tool
// @Description Executes an MCP CallTool request. The result content holds the JSON encoded search response.
// @Tags mcp
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "CallToolResult"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unknown tool"
// @Failure 503 {object} map[string]string "Index not ready"
// @Router /mcp [post]
func (h *Handler) HandleMCP(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var request protocol.CallToolRequest
	if err := json.Unmarshal(c.Body(), &request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("invalid JSON: %v", err)})
	}

	switch request.Name {
	case SearchFoodsTool:
		req := SearchRequest{
			LocaleID:    utils.ToString(request.Arguments["locale"]),
			Description: utils.ToString(request.Arguments["description"]),
			Limit:       utils.ToInt(request.Arguments["limit"]),
			IsRecipe:    utils.ToBool(request.Arguments["isRecipe"]),
		}
		res, err := h.service.Search(c.UserContext(), req)
		if err != nil {
			return h.fail(c, l, "MCP search failed", err)
		}
		result, err := textResult(res)
		if err != nil {
			return h.fail(c, l, "MCP encode failed", err)
		}
		return c.JSON(result)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("unknown tool: %s", request.Name)})
	}
}

func textResult(data any) (*protocol.CallToolResult, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(encoded),
			},
		},
	}, nil
}
