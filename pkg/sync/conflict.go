// Package sync implements the conflict-aware synchronization core:
// hash-based optimistic concurrency on upload, the per-script download,
// upload and run operations, and the sequential batch discipline that
// applies one operation to an ordered list of scripts.
package sync

import (
	"context"

	"github.com/scriptsync/scriptsync/internal/metrics"
	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/protocol"
)

// EnsureNoConflict decides, immediately before an upload, whether the
// remote copy has diverged since the script's last known sync point.
//
// With conflict mode off or force-upload set, the script is returned
// untouched and no remote call is made. Otherwise a download probe runs:
// a divergent digest marks the script conflicted and stores the server
// content; an absent or structurally invalid result marks it conflicted
// without server content (deleted upstream). Only transport failures
// propagate as errors.
func EnsureNoConflict(ctx context.Context, ch channel.Channel, s *models.Script) error {
	if !s.ConflictMode || s.ForceUpload {
		return nil
	}

	res, err := ch.Call(ctx, protocol.OpDownloadScript, s.Name)
	if err != nil {
		if _, ok := channel.AsCallError(err); ok {
			// The server answered but holds no usable copy.
			s.Conflict = true
			logging.Debug("conflict: script rejected by server",
				logging.String("script", s.Name))
			return nil
		}
		return err
	}

	if len(res) == 0 || res[0] == "" {
		s.Conflict = true
		logging.Debug("conflict: script deleted upstream",
			logging.String("script", s.Name))
		return nil
	}

	serverCode := StripBOM(res[0])
	if Digest(serverCode) != s.LastSyncHash {
		s.ServerCode = serverCode
		s.Conflict = true
		metrics.ObserveConflict()
		logging.Debug("conflict: server content diverged",
			logging.String("script", s.Name))
	}
	return nil
}
