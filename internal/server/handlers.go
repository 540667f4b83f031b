package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/overlay"
	"github.com/ironsheep/seatmap/internal/pipeline"
	"github.com/ironsheep/seatmap/internal/registry"
	"github.com/ironsheep/seatmap/internal/seating"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "seat_rooms_list").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "seat_rooms_list":
		return s.handleRoomsList(ctx)
	case "seat_room_get":
		return s.handleRoomGet(ctx, args)
	case "seat_room_extract":
		return s.handleRoomExtract(ctx, args)
	case "seat_pixel_classify":
		return s.handlePixelClassify(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// room loads the registry and looks up one room.
func (s *Server) room(ctx context.Context, id string) (registry.Room, error) {
	if id == "" {
		return registry.Room{}, errors.New("room_id is required")
	}
	reg, err := s.store.Load(ctx)
	if err != nil {
		return registry.Room{}, err
	}
	return reg.Room(id)
}

// === Registry Handlers ===

// RoomSummary is one line of seat_rooms_list.
type RoomSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Image     string     `json:"image"`
	Capacity  *int       `json:"capacity"`
	Seats     int        `json:"seats"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RoomsListResult is the result of seat_rooms_list.
type RoomsListResult struct {
	Rooms []RoomSummary `json:"rooms"`
	Count int           `json:"count"`
}

func (s *Server) handleRoomsList(ctx context.Context) (interface{}, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	res := &RoomsListResult{Rooms: make([]RoomSummary, 0, len(reg.Rooms)), Count: len(reg.Rooms)}
	for _, r := range reg.Rooms {
		res.Rooms = append(res.Rooms, RoomSummary{
			ID:        r.ID,
			Name:      r.Name,
			Image:     r.Image,
			Capacity:  r.Capacity,
			Seats:     len(r.Seats),
			UpdatedAt: r.UpdatedAt,
		})
	}
	return res, nil
}

type roomArgs struct {
	RoomID string `json:"room_id"`
}

func (s *Server) handleRoomGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roomArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.room(ctx, a.RoomID)
}

// === Extraction Handlers ===

type roomExtractArgs struct {
	RoomID      string `json:"room_id"`
	Capacity    *int   `json:"capacity,omitempty"`
	OverlayPath string `json:"overlay_path,omitempty"`
}

// ExtractResult is the result of seat_room_extract.
type ExtractResult struct {
	RoomID    string                  `json:"room_id"`
	Status    pipeline.Status         `json:"status"`
	Capacity  *int                    `json:"capacity"`
	Width     int                     `json:"width"`
	Height    int                     `json:"height"`
	Profile   seating.Profile         `json:"profile,omitempty"`
	Pools     map[seating.Profile]int `json:"pools,omitempty"`
	Removed   int                     `json:"removed"`
	Seats     []seating.Seat          `json:"seats"`
	Warnings  []string                `json:"warnings,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Overlay   string                  `json:"overlay,omitempty"`
	ElapsedMs int64                   `json:"elapsed_ms"`
}

func (s *Server) handleRoomExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roomExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.batch == nil {
		return nil, errors.New("extraction is not configured")
	}
	room, err := s.room(ctx, a.RoomID)
	if err != nil {
		return nil, err
	}
	if a.Capacity != nil {
		room.Capacity = a.Capacity
	}

	out := s.batch.Extract(ctx, room)
	res := &ExtractResult{
		RoomID:    room.ID,
		Status:    out.Status,
		Capacity:  room.Capacity,
		Width:     out.Width,
		Height:    out.Height,
		Profile:   out.Profile,
		Pools:     out.Pools,
		Removed:   out.Removed,
		Seats:     out.Seats,
		Warnings:  out.Warnings,
		ElapsedMs: out.Elapsed.Milliseconds(),
	}
	if res.Seats == nil {
		res.Seats = []seating.Seat{}
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}

	if a.OverlayPath != "" && out.Trace != nil {
		if err := overlay.Save(a.OverlayPath, out.Trace.Raster, pipeline.SceneOf(out)); err != nil {
			return nil, err
		}
		res.Overlay = a.OverlayPath
	}
	return res, nil
}

// === Pixel Inspection Handlers ===

type pixelClassifyArgs struct {
	RoomID string `json:"room_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (s *Server) handlePixelClassify(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pixelClassifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	room, err := s.room(ctx, a.RoomID)
	if err != nil {
		return nil, err
	}
	r, err := s.cache.Load(pipeline.ResolveImage(s.imagesDir, room.Image))
	if err != nil {
		return nil, errors.Wrapf(pipeline.ErrImageUnavailable, "%v", err)
	}
	return imaging.SamplePixel(r, s.classifier, a.X, a.Y)
}
