package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func roomIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Room ID as listed by seat_rooms_list",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "seat_rooms_list",
			Description: "List every room in the registry with its image, declared capacity and number of extracted seats.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "seat_room_get",
			Description: "Get one room with its stored seats. Seat IDs follow reading order; coordinates are pixels in the room's floor plan.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
				},
				"required": []string{"room_id"},
			},
		},
		{
			Name:        "seat_room_extract",
			Description: "Run seat extraction for one room and return the seats, status, candidate pool sizes and warnings. Nothing is written to the registry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
					"capacity": map[string]interface{}{
						"type":        "integer",
						"description": "Override the room's declared capacity for this run",
					},
					"overlay_path": map[string]interface{}{
						"type":        "string",
						"description": "Write a diagnostic PNG to this path",
					},
				},
				"required": []string{"room_id"},
			},
		},
		{
			Name:        "seat_pixel_classify",
			Description: "Sample one pixel of a room's floor plan and report its colour (hex, RGB, HSL), red ratio and the classifier verdict: background, boundary-red or dark-ink.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id": roomIDProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"room_id", "x", "y"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
