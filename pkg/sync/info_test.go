package sync

import (
	"context"
	"testing"

	"github.com/scriptsync/scriptsync/pkg/protocol"
)

func TestDescribe(t *testing.T) {
	ch := &fakeChannel{handler: func(op string, params []string) ([]string, error) {
		return []string{"", `{"name":"crmExport","category":"crm","encrypted":true}`}, nil
	}}

	info, err := Describe(context.Background(), ch, "crmExport")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "crmExport" || info.Category != "crm" || !info.Encrypted {
		t.Errorf("info = %+v", info)
	}
}

func TestDescribe_Unknown(t *testing.T) {
	ch := &fakeChannel{handler: func(string, []string) ([]string, error) {
		return []string{"unknown script", ""}, nil
	}}

	_, err := Describe(context.Background(), ch, "ghost")
	if _, ok := AsNotFound(err); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCheckDecryptionPermission(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "permitted", value: "1", want: true},
		{name: "denied", value: "0", want: false},
		{name: "anything else", value: "true", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{handler: func(op string, params []string) ([]string, error) {
				if op != protocol.OpGetProperty || params[0] != protocol.PropertyAllowDecryption {
					t.Errorf("unexpected call %s %v", op, params)
				}
				return []string{tt.value}, nil
			}}

			info, err := CheckDecryptionPermission(context.Background(), ch, testLogin("8050"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.AllowDecryption != tt.want {
				t.Errorf("AllowDecryption = %v, want %v", info.AllowDecryption, tt.want)
			}
		})
	}
}

func TestScriptNames(t *testing.T) {
	ch := &fakeChannel{handler: func(string, []string) ([]string, error) {
		return []string{"alpha", "beta"}, nil
	}}

	names, err := ScriptNames(context.Background(), ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("names = %v, server order must be preserved", names)
	}
}
