package server

import (
	"encoding/json"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
)

// Channel methods the editor plugin calls with ch_evalexpr().
const (
	MethodHighlight   = "highlight"
	MethodReHighlight = "rehighlight"
	MethodReset       = "reset"
	MethodFocusNext   = "focus_next"
	MethodFocusPrev   = "focus_prev"
	MethodInspect     = "inspect"
	MethodSelectors   = "selectors"
	MethodStatus      = "status"
	MethodPing        = "ping"
)

// Request is the payload of a [id, payload] frame sent by the editor.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the payload sent back in the [id, payload] reply frame.
type Response struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HighlightParams selects what to highlight.
type HighlightParams struct {
	Selector string `json:"selector"`
}

// InspectResult describes the node under the cursor.
type InspectResult struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// SelectorsResult lists candidate selectors for the node under the cursor.
type SelectorsResult struct {
	Selectors []string `json:"selectors"`
}

// StatusResult reports the session state.
type StatusResult struct {
	Session   string           `json:"session"`
	Highlight highlight.Status `json:"highlight"`
	Cache     cache.CacheStats `json:"cache"`
}

// PingResult confirms the server is alive.
type PingResult struct {
	Session string  `json:"session"`
	Version string  `json:"version"`
	BuildID string  `json:"build_id"`
	Uptime  float64 `json:"uptime_seconds"`
}
