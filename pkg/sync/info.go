package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// ScriptInfo is the per-script metadata returned by the describe call.
type ScriptInfo struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Encrypted bool   `json:"encrypted"`
	Modified  string `json:"modified,omitempty"`
	Author    string `json:"author,omitempty"`
}

// ScriptNames enumerates the scripts on the server, in server order.
func ScriptNames(ctx context.Context, ch channel.Channel) ([]string, error) {
	res, err := ch.Call(ctx, protocol.OpGetScriptNames)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Describe fetches the metadata of one script. The server answers with an
// error string and a JSON payload; a non-empty error string means the
// script is unknown.
func Describe(ctx context.Context, ch channel.Channel, name string) (*ScriptInfo, error) {
	res, err := ch.Call(ctx, protocol.OpGetScriptInfo, name)
	if err != nil {
		return nil, err
	}
	if len(res) > 0 && res[0] != "" {
		return nil, &NotFoundError{Name: name}
	}
	if len(res) < 2 || res[1] == "" {
		return nil, fmt.Errorf("getScriptInfo failed: empty payload for %q", name)
	}

	var info ScriptInfo
	if err := json.Unmarshal([]byte(res[1]), &info); err != nil {
		return nil, fmt.Errorf("getScriptInfo failed: %w", err)
	}
	if info.Name == "" {
		info.Name = name
	}
	return &info, nil
}

// CheckDecryptionPermission queries whether the client may store decrypted
// copies of encrypted scripts. The server encodes permission as the
// literal property value "1".
func CheckDecryptionPermission(ctx context.Context, ch channel.Channel, login *models.LoginData) (*models.ServerInfo, error) {
	res, err := ch.Call(ctx, protocol.OpGetProperty, protocol.PropertyAllowDecryption)
	if err != nil {
		return nil, err
	}
	allowed := len(res) > 0 && res[0] == "1"
	return &models.ServerInfo{
		Version:         login.ServerVersion,
		AllowDecryption: allowed,
	}, nil
}

// LookupUser issues the diagnostic user lookup with a test key. Only the
// call outcome matters; the result carries no data the client uses.
func LookupUser(ctx context.Context, ch channel.Channel, testKey string) error {
	_, err := ch.Call(ctx, protocol.OpGetUserID, testKey)
	return err
}
