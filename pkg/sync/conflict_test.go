package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

func TestEnsureNoConflict_SkipsProbe(t *testing.T) {
	tests := []struct {
		name   string
		script func() *models.Script
	}{
		{
			name: "conflict mode off",
			script: func() *models.Script {
				s := models.NewScript("a")
				s.ConflictMode = false
				return s
			},
		},
		{
			name: "force upload",
			script: func() *models.Script {
				s := models.NewScript("a")
				s.ForceUpload = true
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			s := tt.script()
			if err := EnsureNoConflict(context.Background(), ch, s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ch.calls) != 0 {
				t.Errorf("expected no remote calls, got %v", ch.calls)
			}
			if s.Conflict {
				t.Error("resolver must never set the conflict flag when the probe is skipped")
			}
		})
	}
}

func TestEnsureNoConflict_NoDivergence(t *testing.T) {
	content := "var a = 1;"
	ch := &fakeChannel{handler: func(op string, params []string) ([]string, error) {
		return []string{content, protocol.FlagPlain, ""}, nil
	}}

	s := models.NewScript("a")
	s.LastSyncHash = Digest(content)
	if err := EnsureNoConflict(context.Background(), ch, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Conflict {
		t.Error("matching digests must not flag a conflict")
	}
	if s.ServerCode != "" {
		t.Errorf("server code must stay empty without divergence, got %q", s.ServerCode)
	}
}

func TestEnsureNoConflict_Diverged(t *testing.T) {
	ch := &fakeChannel{handler: func(op string, params []string) ([]string, error) {
		return []string{"var a = 2;", protocol.FlagPlain, ""}, nil
	}}

	s := models.NewScript("a")
	s.LastSyncHash = Digest("var a = 1;")
	if err := EnsureNoConflict(context.Background(), ch, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Conflict {
		t.Fatal("diverged digests must flag a conflict")
	}
	if s.ServerCode != "var a = 2;" {
		t.Errorf("server code = %q, want the divergent remote content", s.ServerCode)
	}
}

func TestEnsureNoConflict_ServerBOMIgnored(t *testing.T) {
	content := "var a = 1;"
	ch := &fakeChannel{handler: func(op string, params []string) ([]string, error) {
		return []string{"\ufeff" + content, protocol.FlagPlain, ""}, nil
	}}

	s := models.NewScript("a")
	s.LastSyncHash = Digest(content)
	if err := EnsureNoConflict(context.Background(), ch, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Conflict {
		t.Error("a leading BOM on the server copy must not cause a conflict")
	}
}

func TestEnsureNoConflict_DeletedUpstream(t *testing.T) {
	tests := []struct {
		name    string
		handler func(op string, params []string) ([]string, error)
	}{
		{
			name: "empty tuple",
			handler: func(string, []string) ([]string, error) {
				return nil, nil
			},
		},
		{
			name: "empty content",
			handler: func(string, []string) ([]string, error) {
				return []string{"", "", ""}, nil
			},
		},
		{
			name: "server rejects the probe",
			handler: func(op string, _ []string) ([]string, error) {
				return nil, &channel.CallError{Op: op, Message: "no such script"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{handler: tt.handler}
			s := models.NewScript("gone")
			s.LastSyncHash = Digest("anything")
			if err := EnsureNoConflict(context.Background(), ch, s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !s.Conflict {
				t.Fatal("an absent server copy must flag a conflict")
			}
			if s.ServerCode != "" {
				t.Errorf("deleted-upstream conflicts carry no server code, got %q", s.ServerCode)
			}
		})
	}
}

func TestEnsureNoConflict_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	ch := &fakeChannel{handler: func(string, []string) ([]string, error) {
		return nil, boom
	}}

	s := models.NewScript("a")
	err := EnsureNoConflict(context.Background(), ch, s)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the transport error, got %v", err)
	}
	if s.Conflict {
		t.Error("transport failures must not masquerade as conflicts")
	}
}
