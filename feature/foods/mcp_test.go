package foods

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleMCP_SearchFoods(t *testing.T) {
	app, idx, _ := setupTestApp(t)
	idx.On("Search", mock.Anything, mock.Anything).Return(appleHits(), nil)

	body := `{"name":"search_foods","arguments":{"locale":"en_GB","description":"apple","limit":"1"}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	decode(t, resp.Body, &result)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)

	var payload SearchResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, []string{"F2"}, foodIDs(&payload))
}

func TestHandleMCP_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "invalid json", body: `{`, wantStatus: 400},
		{name: "unknown tool", body: `{"name":"log_meal","arguments":{}}`, wantStatus: 404},
		{name: "missing description", body: `{"name":"search_foods","arguments":{"locale":"en_GB"}}`, wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := setupTestApp(t)
			req := httptest.NewRequest("POST", "/mcp", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandleMCPTools(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/mcp", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var listed []ToolInfo
	decode(t, resp.Body, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, SearchFoodsTool, listed[0].Name)
}
