package sync

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/scriptsync/scriptsync/internal/localfs"
	"github.com/scriptsync/scriptsync/internal/metrics"
	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// wrapOp prefixes a per-script failure with the operation name. Server
// failures for the same operation already carry the prefix.
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := channel.AsCallError(err); ok && ce.Op == op {
		return err
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// lineSeparator is the platform line separator used to join run output.
func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// flagFor maps a script's encryption state to its wire flag.
func flagFor(s *models.Script) string {
	switch s.EncryptionState {
	case models.EncryptionEncrypted:
		return protocol.FlagEncrypted
	case models.EncryptionDecrypted:
		return protocol.FlagDecrypted
	default:
		return protocol.FlagPlain
	}
}

// stateFor maps a wire flag to the script's encryption state.
func stateFor(flag string) models.EncryptionState {
	switch flag {
	case protocol.FlagDecrypted:
		return models.EncryptionDecrypted
	case protocol.FlagEncrypted:
		return models.EncryptionEncrypted
	default:
		return models.EncryptionPlain
	}
}

// Download fetches one script from the server and persists it locally.
//
// An empty or missing content tuple means the script does not exist on the
// server. An encryption flag other than "false" or "decrypted" means the
// content stays server-encrypted and the client may not store it; that is
// the one failure download batches are allowed to skip. The target path is
// category-qualified only when the server reports a category and the
// server build supports categories.
func Download(ctx context.Context, ch channel.Channel, login *models.LoginData, s *models.Script) error {
	res, err := ch.Call(ctx, protocol.OpDownloadScript, s.Name)
	if err != nil {
		return wrapOp("downloadScript", err)
	}
	if len(res) == 0 || res[0] == "" {
		return wrapOp("downloadScript", &NotFoundError{Name: s.Name})
	}

	flag := protocol.FlagPlain
	if len(res) > 1 && res[1] != "" {
		flag = res[1]
	}
	if flag != protocol.FlagPlain && flag != protocol.FlagDecrypted {
		return wrapOp("downloadScript", &PermissionDeniedError{Name: s.Name})
	}

	category := ""
	if len(res) > 2 {
		category = res[2]
	}

	content := StripBOM(res[0])

	path := s.Path
	if category != "" && protocol.SupportsCategories(login.ServerVersion) && s.CategoryRoot != "" {
		s.Category = category
		path = localfs.ScriptPath(s.CategoryRoot, category, s.Name)
	}
	if path == "" {
		return wrapOp("downloadScript", fmt.Errorf("script %q has no local path", s.Name))
	}

	if err := localfs.WriteScript(path, content); err != nil {
		return wrapOp("downloadScript", err)
	}

	s.Path = path
	s.ServerCode = content
	s.SourceCode = content
	s.EncryptionState = stateFor(flag)
	s.Conflict = false
	if s.ConflictMode {
		s.LastSyncHash = Digest(content)
	}

	metrics.ObserveScript("download")
	logging.Debug("script downloaded",
		logging.String("script", s.Name),
		logging.String("path", path))
	return nil
}

// Upload stores one script on the server, unless the conflict check finds
// the server copy diverged. A detected conflict is not a failure: the
// script is handed back carrying the conflict flag and the server content,
// with no upload call made, and the caller decides between force-upload
// and discard.
func Upload(ctx context.Context, ch channel.Channel, login *models.LoginData, s *models.Script) error {
	if s.SourceCode == "" {
		return wrapOp("uploadScript", fmt.Errorf("script %q has no source code", s.Name))
	}
	s.SourceCode = StripBOM(s.SourceCode)

	if err := EnsureNoConflict(ctx, ch, s); err != nil {
		return wrapOp("uploadScript", err)
	}
	if s.Conflict {
		logging.Info("upload skipped, conflict pending",
			logging.String("script", s.Name))
		return nil
	}

	params := []string{s.Name, s.SourceCode, flagFor(s)}
	if s.Category != "" && protocol.SupportsCategories(login.ServerVersion) {
		params = append(params, s.Category)
	}
	if _, err := ch.Call(ctx, protocol.OpUploadScript, params...); err != nil {
		return wrapOp("uploadScript", err)
	}

	if s.ConflictMode {
		s.LastSyncHash = Digest(s.SourceCode)
	}
	s.ForceUpload = false

	metrics.ObserveScript("upload")
	logging.Debug("script uploaded", logging.String("script", s.Name))
	return nil
}

// Run executes one script on the server and captures its output.
func Run(ctx context.Context, ch channel.Channel, login *models.LoginData, s *models.Script) error {
	res, err := ch.Call(ctx, protocol.OpRunScript, s.Name)
	if err != nil {
		return wrapOp("runScript", err)
	}
	if len(res) == 0 {
		return wrapOp("runScript", &NotFoundError{Name: s.Name})
	}

	s.Output = strings.Join(res, lineSeparator())

	metrics.ObserveScript("run")
	logging.Debug("script executed", logging.String("script", s.Name))
	return nil
}
