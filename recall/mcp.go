package recall

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/recallwatch/kit"
)

// RegisterMCP registers the recall tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	mw := kit.Logging(svc.logger)

	type sourcesReq struct {
		Tier        int    `json:"tier"`
		Country     string `json:"country"`
		EnabledOnly bool   `json:"enabled_only"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_list_sources",
		Description: "List monitored recall sources, optionally filtered by tier or country",
		InputSchema: inputSchema(map[string]any{
			"tier":         map[string]any{"type": "integer", "description": "1 for official regulators, 2 for retailers"},
			"country":      map[string]any{"type": "string", "description": "ISO country code, e.g. DE"},
			"enabled_only": map[string]any{"type": "boolean", "description": "Skip disabled sources"},
		}, nil),
	}, mw(func(ctx context.Context, r any) (any, error) {
		p := r.(*sourcesReq)
		return svc.Sources(ctx, SourceFilter{Tier: p.Tier, Country: p.Country, EnabledOnly: p.EnabledOnly})
	}), kit.DecodeJSON[sourcesReq]())

	type scanSourceReq struct {
		Key      string `json:"key"`
		ForceOCR bool   `json:"force_ocr"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_scan_source",
		Description: "Scan one source now and return its result",
		InputSchema: inputSchema(map[string]any{
			"key":       map[string]any{"type": "string", "description": "Source key"},
			"force_ocr": map[string]any{"type": "boolean", "description": "Transcribe images even if unchanged"},
		}, []string{"key"}),
	}, mw(func(ctx context.Context, r any) (any, error) {
		p := r.(*scanSourceReq)
		return svc.ScanSource(ctx, p.Key, p.ForceOCR)
	}), kit.DecodeJSON[scanSourceReq]())

	type emptyReq struct{}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_scan_all",
		Description: "Run a full scan cycle over enabled sources and return the report",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, mw(func(ctx context.Context, _ any) (any, error) {
		return svc.Scan(ctx)
	}), kit.DecodeJSON[emptyReq]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_last_report",
		Description: "Return the report of the most recent scan cycle",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, mw(func(context.Context, any) (any, error) {
		rep := svc.LastReport()
		if rep == nil {
			return nil, ErrNotFound
		}
		return rep, nil
	}), kit.DecodeJSON[emptyReq]())

	type addItemReq struct {
		ModelKey string `json:"model_key"`
		MHD      string `json:"mhd"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_add_item",
		Description: "Register a product lot by model key and best-before date",
		InputSchema: inputSchema(map[string]any{
			"model_key": map[string]any{"type": "string", "description": "Model key from recall_list_models"},
			"mhd":       map[string]any{"type": "string", "description": "Best-before date, DD-MM-YYYY"},
		}, []string{"model_key", "mhd"}),
	}, mw(func(ctx context.Context, r any) (any, error) {
		p := r.(*addItemReq)
		return svc.AddItem(ctx, p.ModelKey, p.MHD)
	}), kit.DecodeJSON[addItemReq]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_list_items",
		Description: "List registered product lots",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, mw(func(ctx context.Context, _ any) (any, error) {
		return svc.Items(ctx)
	}), kit.DecodeJSON[emptyReq]())

	type removeItemReq struct {
		ID string `json:"id"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_remove_item",
		Description: "Remove a registered product lot",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Item ID"},
		}, []string{"id"}),
	}, mw(func(ctx context.Context, r any) (any, error) {
		p := r.(*removeItemReq)
		if err := svc.RemoveItem(ctx, p.ID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "deleted", "id": p.ID}, nil
	}), kit.DecodeJSON[removeItemReq]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_list_models",
		Description: "List the known product models and their aliases",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, mw(func(context.Context, any) (any, error) {
		return svc.Models(), nil
	}), kit.DecodeJSON[emptyReq]())

	type snapshotsReq struct {
		Source string `json:"source"`
	}
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "recall_snapshots",
		Description: "List retained change snapshots, newest first",
		InputSchema: inputSchema(map[string]any{
			"source": map[string]any{"type": "string", "description": "Optional source key"},
		}, nil),
	}, mw(func(ctx context.Context, r any) (any, error) {
		return svc.Snapshots(ctx, r.(*snapshotsReq).Source)
	}), kit.DecodeJSON[snapshotsReq]())
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
