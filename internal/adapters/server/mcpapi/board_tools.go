package mcpapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/pipeline/internal/adapters/server/common"
	"github.com/hylla/pipeline/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// mcpContext tags one tool call as an MCP-originated gesture.
func mcpContext(ctx context.Context) context.Context {
	return app.WithGestureOrigin(ctx, app.GestureOrigin{Transport: app.OriginMCP})
}

// targetOptions declares the shared drop-target arguments.
func targetOptions(required bool) []mcp.ToolOption {
	idOpts := []mcp.PropertyOption{mcp.Description("Target column or card identifier; empty means no target")}
	if required {
		idOpts = append(idOpts, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("target_kind", mcp.Description("Target kind"), mcp.Enum("card", "column")),
		mcp.WithString("target_id", idOpts...),
		mcp.WithString("target_column_id", mcp.Description("Column of a card target")),
	}
}

// targetFromArgs builds one optional target request from tool arguments.
func targetFromArgs(req mcp.CallToolRequest) *common.TargetRequest {
	id := strings.TrimSpace(req.GetString("target_id", ""))
	if id == "" {
		return nil
	}
	return &common.TargetRequest{
		Kind:     req.GetString("target_kind", ""),
		ID:       id,
		ColumnID: req.GetString("target_column_id", ""),
	}
}

// jsonResult encodes one successful tool payload.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// registerQueryTools registers read-only board tools.
func registerQueryTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"pipeline.get_board",
			mcp.WithDescription("Return the full board: columns, ordered items, and drag state."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			snap, err := board.Board(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", snap)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"pipeline.list_columns",
			mcp.WithDescription("List board columns in display order with item counts."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columns, err := board.Columns(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_columns", map[string]any{
				"columns": columns,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"pipeline.items_in_column",
			mcp.WithDescription("List the items of one column in board order."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			items, err := board.ItemsInColumn(ctx, columnID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("items_in_column", map[string]any{
				"column_id": columnID,
				"items":     items,
			})
		},
	)
}

// registerGestureTools registers drag lifecycle tools.
func registerGestureTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"pipeline.drag_start",
			mcp.WithDescription("Begin dragging one item. Ignored while another drag is active."),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Item identifier")),
			mcp.WithString("source", mcp.Description("Drag source kind"), mcp.Enum("card", "column")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			itemID, err := req.RequireString("item_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := board.DragStart(mcpContext(ctx), common.DragStartRequest{
				ItemID: itemID,
				Source: req.GetString("source", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drag_start", res)
		},
	)

	overOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Report the target under the active item. Reorders or reassigns live."),
	}, targetOptions(false)...)
	srv.AddTool(
		mcp.NewTool("pipeline.drag_over", overOpts...),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := board.DragOver(mcpContext(ctx), common.DragRequest{Target: targetFromArgs(req)})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drag_over", res)
		},
	)

	endOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Drop the active item. A missing target cancels and keeps hover changes."),
	}, targetOptions(false)...)
	srv.AddTool(
		mcp.NewTool("pipeline.drag_end", endOpts...),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := board.DragEnd(mcpContext(ctx), common.DragRequest{Target: targetFromArgs(req)})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drag_end", res)
		},
	)

	moveOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Move one item onto a column or card in a single gesture."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Item identifier")),
	}, targetOptions(true)...)
	srv.AddTool(
		mcp.NewTool("pipeline.move_item", moveOpts...),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			itemID, err := req.RequireString("item_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if _, err := req.RequireString("target_id"); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := board.MoveItem(mcpContext(ctx), common.MoveItemRequest{
				ItemID: itemID,
				Target: targetFromArgs(req),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_item", res)
		},
	)
}

// registerReplaceTool registers the full collection replacement tool.
func registerReplaceTool(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"pipeline.replace_items",
			mcp.WithDescription("Replace the whole item collection. Refused while a drag is active."),
			mcp.WithArray("items", mcp.Required(), mcp.Description("Ordered items with id, column_id and optional fields")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.ReplaceItemsRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			snap, err := board.ReplaceItems(mcpContext(ctx), args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("replace_items", snap)
		},
	)
}
