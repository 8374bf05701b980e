package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/cache"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/config"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/highlight"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/version"
)

// session is the state of one connected editor: its buffer cache, the
// highlight controller and the inspector, all talking through one channel.
type session struct {
	id      string
	client  *vimClient
	cache   *cache.BufferCache
	ctrl    *highlight.Controller
	insp    *highlight.Inspector
	started time.Time
}

func newSession(client *vimClient, cfg *config.Config) *session {
	c := cache.New(client, cache.Options{
		Parser:   parser.New(cfg.ParserOptions()),
		Registry: cfg.Registry(),
		Dialect:  cfg.ForcedDialect(),
	})
	return &session{
		id:      uuid.NewString(),
		client:  client,
		cache:   c,
		ctrl:    highlight.NewController(c, client, cfg.HighlightOptions()),
		insp:    highlight.NewInspector(c, client),
		started: time.Now(),
	}
}

// close stops pending re-highlights. The channel must already be closed so
// that a running one fails fast.
func (s *session) close() {
	s.ctrl.Close()
}

// invalidRequest answers a frame whose payload is not a request.
func invalidRequest(err error) Response {
	return Response{Error: errors.NewProtocolError("", err).Error()}
}

// handle runs one editor request.
func (s *session) handle(ctx context.Context, req Request) Response {
	start := time.Now()
	result, err := s.dispatch(ctx, req)
	debug.LogServer("[%s] %s took %v (err=%v)", s.id[:8], req.Method, time.Since(start), err)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true, Result: result}
}

func (s *session) dispatch(ctx context.Context, req Request) (interface{}, error) {
	switch req.Method {
	case MethodHighlight:
		var p HighlightParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return nil, errors.NewProtocolError(req.Method, err)
			}
		}
		return nil, s.ctrl.Highlight(ctx, p.Selector)

	case MethodReHighlight:
		s.ctrl.ReHighlight(ctx)
		return nil, nil

	case MethodReset:
		return nil, s.ctrl.Reset(ctx)

	case MethodFocusNext:
		return nil, s.ctrl.FocusNext(ctx)

	case MethodFocusPrev:
		return nil, s.ctrl.FocusPrev(ctx)

	case MethodInspect:
		n, err := s.insp.Inspect(ctx)
		if err != nil || n == nil {
			return nil, err
		}
		return InspectResult{Type: string(n.Type), Start: n.Range.Start, End: n.Range.End}, nil

	case MethodSelectors:
		selectors, err := s.insp.Suggest(ctx)
		if err != nil {
			return nil, err
		}
		return SelectorsResult{Selectors: selectors}, nil

	case MethodStatus:
		return StatusResult{Session: s.id, Highlight: s.ctrl.Status(), Cache: s.cache.Stats()}, nil

	case MethodPing:
		return PingResult{
			Session: s.id,
			Version: version.Version,
			BuildID: version.BuildID(),
			Uptime:  time.Since(s.started).Seconds(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown method %q", req.Method)
	}
}
