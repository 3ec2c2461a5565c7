package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// testServer accepts one connection and answers each frame through the
// handler, the way httptest scripts an HTTP backend.
func testServer(t *testing.T, handler func(op string, params []string) ([]string, string)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadBytes('\n')
			if err != nil {
				return
			}
			var req request
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}

			var resp response
			if req.Op == protocol.OpHello {
				resp.Result = []string{"testserver/8050"}
			} else {
				result, errStr := handler(req.Op, req.Params)
				resp.Result = result
				resp.Error = errStr
			}
			frame, _ := json.Marshal(resp)
			frame = append(frame, '\n')
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func TestDialAndCall(t *testing.T) {
	addr := testServer(t, func(op string, params []string) ([]string, string) {
		if op != protocol.OpGetServerVersion {
			t.Errorf("unexpected op %q", op)
		}
		return []string{"8050"}, ""
	})

	ch, err := Dial(context.Background(), addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	res, err := ch.Call(context.Background(), protocol.OpGetServerVersion)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(res) != 1 || res[0] != "8050" {
		t.Errorf("result = %v, want [8050]", res)
	}
}

func TestCall_ServerError(t *testing.T) {
	addr := testServer(t, func(op string, params []string) ([]string, string) {
		return nil, "no such script"
	})

	ch, err := Dial(context.Background(), addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	_, err = ch.Call(context.Background(), protocol.OpDownloadScript, "ghost")
	ce, ok := AsCallError(err)
	if !ok {
		t.Fatalf("expected CallError, got %v", err)
	}
	if ce.Op != protocol.OpDownloadScript || ce.Message != "no such script" {
		t.Errorf("CallError = %+v", ce)
	}
	if want := "downloadScript failed: no such script"; ce.Error() != want {
		t.Errorf("message = %q, want %q", ce.Error(), want)
	}
}

func TestCall_Params(t *testing.T) {
	var gotOp string
	var gotParams []string
	addr := testServer(t, func(op string, params []string) ([]string, string) {
		gotOp, gotParams = op, params
		return nil, ""
	})

	ch, err := Dial(context.Background(), addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	if _, err := ch.Call(context.Background(), protocol.OpUploadScript, "name", "code", "false"); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gotOp != protocol.OpUploadScript {
		t.Errorf("op = %q", gotOp)
	}
	if len(gotParams) != 3 || gotParams[0] != "name" || gotParams[2] != "false" {
		t.Errorf("params = %v", gotParams)
	}
}

func TestClose_Idempotent(t *testing.T) {
	addr := testServer(t, func(string, []string) ([]string, string) { return nil, "" })

	ch, err := Dial(context.Background(), addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second close must be harmless, got %v", err)
	}

	if _, err := ch.Call(context.Background(), protocol.OpGetScriptNames); err != ErrClosed {
		t.Errorf("call after close = %v, want ErrClosed", err)
	}
}

func TestDial_Refused(t *testing.T) {
	// Grab a free port and close it again so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(context.Background(), addr, time.Second); err == nil {
		t.Fatal("expected a dial error")
	}
}
