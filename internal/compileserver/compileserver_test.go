package compileserver

import (
	"testing"

	"weakc/internal/diag"
)

func TestBroadcastToNoClientsDoesNotPanic(t *testing.T) {
	s := New(":0")
	s.Broadcast(&Report{Source: "prog.weak", OK: true})
}

func TestRegisterUnregisterTracksClients(t *testing.T) {
	s := New(":0")
	c := &client{id: "test-client", send: make(chan *Report, 1)}

	s.register(c)
	if _, ok := s.clients[c.id]; !ok {
		t.Fatal("expected client to be registered")
	}

	s.Broadcast(&Report{
		Source:      "prog.weak",
		Diagnostics: []*diag.Diagnostic{{Severity: diag.Error, Pos: diag.Pos{Line: 1, Column: 1}, Message: "boom"}},
		OK:          false,
	})
	select {
	case r := <-c.send:
		if r.OK {
			t.Error("expected a failing report")
		}
	default:
		t.Fatal("expected a report to be queued for the registered client")
	}

	s.unregister(c)
	if _, ok := s.clients[c.id]; ok {
		t.Fatal("expected client to be unregistered")
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	s := New(":0")
	c := &client{id: "slow-client", send: make(chan *Report, 1)}
	s.register(c)

	// Fill the buffer, then broadcast again: the second send must not block.
	s.Broadcast(&Report{OK: true})
	s.Broadcast(&Report{OK: true})
}
