package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/editor"
)

// fakeVim plays the editor side of the channel: it answers expr and call
// frames from a MemoryBuffer and records what the server asked it to do.
type fakeVim struct {
	t    *testing.T
	conn net.Conn
	buf  *editor.MemoryBuffer

	writeMu sync.Mutex

	mu        sync.Mutex
	nextReq   int
	waiting   map[int]chan Response
	matches   map[int][][3]int
	groups    []string
	nextMatch int
	ex        []string
	messages  []string
	done      chan struct{}
}

func dialFakeVim(t *testing.T, socket string, buf *editor.MemoryBuffer) *fakeVim {
	t.Helper()
	conn, err := net.Dial("unix", socket)
	require.NoError(t, err)
	v := &fakeVim{
		t:         t,
		conn:      conn,
		buf:       buf,
		waiting:   make(map[int]chan Response),
		matches:   make(map[int][][3]int),
		nextMatch: 1,
		done:      make(chan struct{}),
	}
	go v.readLoop()
	t.Cleanup(v.Close)
	return v
}

func (v *fakeVim) Close() {
	v.conn.Close()
	<-v.done
}

func (v *fakeVim) write(frame ...interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		panic(err)
	}
	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	_, _ = v.conn.Write(data)
}

// Request sends [id, {method, params}] and waits for the answer.
func (v *fakeVim) Request(method string, params interface{}) Response {
	v.t.Helper()
	v.mu.Lock()
	v.nextReq++
	id := v.nextReq
	ch := make(chan Response, 1)
	v.waiting[id] = ch
	v.mu.Unlock()

	v.write(id, map[string]interface{}{"method": method, "params": params})
	select {
	case resp := <-ch:
		return resp
	case <-time.After(5 * time.Second):
		v.t.Fatalf("no answer to %s", method)
		return Response{}
	}
}

// Notify sends a request with id 0, which gets no answer.
func (v *fakeVim) Notify(method string) {
	v.write(0, map[string]interface{}{"method": method})
}

func (v *fakeVim) readLoop() {
	defer close(v.done)
	dec := json.NewDecoder(bufio.NewReader(v.conn))
	for {
		var frame []json.RawMessage
		if err := dec.Decode(&frame); err != nil {
			return
		}
		var kind string
		if json.Unmarshal(frame[0], &kind) != nil {
			var id int
			var resp Response
			_ = json.Unmarshal(frame[0], &id)
			_ = json.Unmarshal(frame[1], &resp)
			v.mu.Lock()
			ch := v.waiting[id]
			delete(v.waiting, id)
			v.mu.Unlock()
			if ch != nil {
				ch <- resp
			}
			continue
		}
		switch kind {
		case "expr":
			var expr string
			var id int
			_ = json.Unmarshal(frame[1], &expr)
			_ = json.Unmarshal(frame[2], &id)
			v.write(id, v.eval(expr))
		case "call":
			var fn string
			var args []json.RawMessage
			var id int
			_ = json.Unmarshal(frame[1], &fn)
			_ = json.Unmarshal(frame[2], &args)
			_ = json.Unmarshal(frame[3], &id)
			v.write(id, v.call(fn, args))
		case "ex":
			var cmd string
			_ = json.Unmarshal(frame[1], &cmd)
			v.runEx(cmd)
		case "redraw":
		}
	}
}

func (v *fakeVim) eval(expr string) interface{} {
	ctx := context.Background()
	var n int
	switch {
	case strings.HasPrefix(expr, "{'id': bufnr('%')"):
		id, _ := v.buf.CurrentBufferID(ctx)
		return map[string]interface{}{"id": id, "name": v.buf.Name()}
	case strings.HasPrefix(expr, "getbufvar("):
		fmt.Sscanf(expr, "getbufvar(%d,", &n)
		tok, _ := v.buf.ChangeToken(ctx, n)
		return tok
	case strings.HasPrefix(expr, "getbufline("):
		fmt.Sscanf(expr, "getbufline(%d,", &n)
		lines, _ := v.buf.ReadAllLines(ctx, n)
		return lines
	case expr == "[line('.'), col('.')]":
		cur, _ := v.buf.CursorPosition(ctx)
		return []int{cur.Line, cur.Column}
	}
	return "ERROR"
}

func (v *fakeVim) call(fn string, args []json.RawMessage) interface{} {
	if fn != "matchaddpos" {
		return "ERROR"
	}
	var group string
	var pos [][3]int
	_ = json.Unmarshal(args[0], &group)
	_ = json.Unmarshal(args[1], &pos)
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextMatch
	v.nextMatch++
	v.matches[id] = pos
	v.groups = append(v.groups, group)
	return id
}

func (v *fakeVim) runEx(cmd string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ex = append(v.ex, cmd)

	var a, b int
	switch {
	case strings.HasPrefix(cmd, "call cursor("):
		fmt.Sscanf(cmd, "call cursor(%d, %d)", &a, &b)
		v.buf.SetCursor(a, b)
	case strings.HasPrefix(cmd, "silent! call matchdelete("):
		fmt.Sscanf(cmd, "silent! call matchdelete(%d)", &a)
		delete(v.matches, a)
	case strings.Contains(cmd, "echomsg "):
		msg := cmd[strings.Index(cmd, "echomsg ")+len("echomsg "):]
		msg = strings.TrimSuffix(msg, " | echohl None")
		msg = strings.ReplaceAll(strings.Trim(msg, "'"), "''", "'")
		v.messages = append(v.messages, msg)
	}
}

func (v *fakeVim) Matches() [][3]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out [][3]int
	for id := 1; id < v.nextMatch; id++ {
		out = append(out, v.matches[id]...)
	}
	return out
}

func (v *fakeVim) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}

func (v *fakeVim) LastMessage() string {
	msgs := v.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (v *fakeVim) Ex() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.ex...)
}
