// Package tools exposes every service action as an MCP tool that answers
// with a human-readable summary.
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"

	"pifko/internal/apperr"
	applog "pifko/internal/log"
	"pifko/internal/stock"
	"pifko/models"
)

const version = "1.0.0"

// NewServer registers the tools on a fresh MCP server.
func NewServer(name string, tools []server.ServerTool) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false), server.WithRecovery())
	s.AddTools(tools...)
	applog.Debug(context.Background(), "mcp tools registered", "server", name, "count", len(tools))
	return s
}

// Handler serves s over streamable HTTP.
func Handler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// args reads tool arguments and keeps the first error.
type args struct {
	req mcp.CallToolRequest
	err error
}

func newArgs(req mcp.CallToolRequest) *args {
	return &args{req: req}
}

func (a *args) fail(err error) {
	if a.err == nil && err != nil {
		a.err = fmt.Errorf("%v: %w", err, apperr.ErrMalformedInput)
	}
}

func (a *args) String(key string) string {
	v, err := a.req.RequireString(key)
	a.fail(err)
	return v
}

func (a *args) OptString(key string) string {
	return a.req.GetString(key, "")
}

func (a *args) Int(key string) int64 {
	v, err := a.req.RequireInt(key)
	a.fail(err)
	return int64(v)
}

func (a *args) OptInt(key string, def int) int64 {
	return int64(a.req.GetInt(key, def))
}

func (a *args) ID(key string) uint {
	v := a.Int(key)
	if a.err == nil && v <= 0 {
		a.fail(fmt.Errorf("%s must be a positive id", key))
	}
	return uint(v)
}

func (a *args) Kind(key string) models.IngredientKind {
	raw := a.String(key)
	if a.err != nil {
		return ""
	}
	kind, err := models.ParseIngredientKind(raw)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}
	return kind
}

func (a *args) OptKind(key string) models.IngredientKind {
	if a.OptString(key) == "" {
		return ""
	}
	return a.Kind(key)
}

// respond turns a service outcome into a tool result. Service failures are
// reported to the caller as error results, never as protocol errors.
func respond(ctx context.Context, tool string, text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		applog.Warn(ctx, "tool call failed", "tool", tool, "error", err)
		return mcp.NewToolResultError(describe(err)), nil
	}
	applog.Debug(ctx, "tool call succeeded", "tool", tool)
	return mcp.NewToolResultText(text), nil
}

func describe(err error) string {
	var shortfall *stock.ShortfallError
	switch {
	case errors.As(err, &shortfall):
		return FormatShortfallError(shortfall)
	case errors.Is(err, apperr.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, apperr.ErrInvalidEnumValue):
		return "Invalid value: " + err.Error()
	case errors.Is(err, apperr.ErrMalformedInput):
		return "Malformed input: " + err.Error()
	case errors.Is(err, apperr.ErrInvalidTransition):
		return "Transition not allowed: " + err.Error()
	case errors.Is(err, apperr.ErrReferenced):
		return "Cannot delete: " + err.Error()
	case errors.Is(err, apperr.ErrUnverifiedReference):
		return "Unverified reference: " + err.Error()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return "Already exists, try again: " + err.Error()
	}
	return "Internal error, the operation was not applied."
}

func kindParam(required bool) mcp.ToolOption {
	opts := []mcp.PropertyOption{
		mcp.Description("Ingredient kind: hops, malts or yeasts"),
		mcp.Enum("hops", "malts", "yeasts", "hop", "malt", "yeast"),
	}
	if required {
		opts = append(opts, mcp.Required())
	}
	return mcp.WithString("ingredient_type", opts...)
}

func idParam(name, description string) mcp.ToolOption {
	return mcp.WithNumber(name, mcp.Required(), mcp.Description(description))
}

// Objects reads an array of objects such as order or recipe lines.
func (a *args) Objects(key string) []map[string]any {
	raw, ok := a.req.GetArguments()[key]
	if !ok {
		a.fail(fmt.Errorf("required argument %q not found", key))
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		a.fail(fmt.Errorf("argument %q must be an array", key))
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			a.fail(fmt.Errorf("%s[%d] must be an object", key, i))
			return nil
		}
		out = append(out, obj)
	}
	return out
}

// field reads a whole number from a decoded JSON object.
func (a *args) field(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case float64:
		if v != float64(int64(v)) {
			a.fail(fmt.Errorf("%q must be a whole number", key))
		}
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case nil:
		a.fail(fmt.Errorf("required field %q not found", key))
	default:
		a.fail(fmt.Errorf("%q must be a number", key))
	}
	return 0
}

func (a *args) kindField(obj map[string]any, key string) models.IngredientKind {
	raw, _ := obj[key].(string)
	kind, err := models.ParseIngredientKind(raw)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%v: %w", err, apperr.ErrInvalidEnumValue)
	}
	return kind
}
