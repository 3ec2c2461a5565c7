package sync

import (
	"context"

	"github.com/scriptsync/scriptsync/pkg/channel"
	"github.com/scriptsync/scriptsync/pkg/logging"
	"github.com/scriptsync/scriptsync/pkg/models"
	"github.com/scriptsync/scriptsync/pkg/session"
)

// SingleOp applies one operation to one script over an open channel.
type SingleOp func(ctx context.Context, ch channel.Channel, login *models.LoginData, s *models.Script) error

// Policy decides whether a per-script failure is swallowed (the script is
// omitted and the batch continues) or aborts the remaining sequence.
type Policy func(err error) bool

// AbortAll stops the batch on any failure. Upload and run batches use it.
func AbortAll(error) bool { return false }

// SkipPermissionDenied swallows the decrypt-permission failure and aborts
// on anything else. Download batches use it.
func SkipPermissionDenied(err error) bool { return IsPermissionDenied(err) }

// RunBatch applies op to each script in input order, strictly one at a
// time over the shared channel. Successfully processed scripts accumulate
// in processing order; the result is therefore a prefix or subset of the
// input, never longer. On a non-swallowed failure the accumulated prefix
// is returned together with that failure; scripts already processed are
// not rolled back.
func RunBatch(ctx context.Context, ch channel.Channel, login *models.LoginData, scripts []*models.Script, op SingleOp, policy Policy) ([]*models.Script, error) {
	done := make([]*models.Script, 0, len(scripts))
	for _, s := range scripts {
		if err := op(ctx, ch, login, s); err != nil {
			if policy(err) {
				logging.Info("script skipped",
					logging.String("script", s.Name),
					logging.Err(err))
				continue
			}
			return done, err
		}
		done = append(done, s)
	}
	return done, nil
}

// DownloadAll returns the batch operation that downloads the given scripts,
// skipping those the client may not decrypt.
func DownloadAll(scripts []*models.Script) session.Operation {
	return func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error) {
		return RunBatch(ctx, ch, login, scripts, Download, SkipPermissionDenied)
	}
}

// UploadAll returns the batch operation that uploads the given scripts.
// Any failure aborts the remainder; a detected conflict does not count as
// a failure.
func UploadAll(scripts []*models.Script) session.Operation {
	return func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error) {
		return RunBatch(ctx, ch, login, scripts, Upload, AbortAll)
	}
}

// RunAll returns the batch operation that executes the given scripts
// remotely. Any failure aborts the remainder.
func RunAll(scripts []*models.Script) session.Operation {
	return func(ctx context.Context, ch channel.Channel, login *models.LoginData) ([]*models.Script, error) {
		return RunBatch(ctx, ch, login, scripts, Run, AbortAll)
	}
}
