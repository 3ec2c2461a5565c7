package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/scriptsync/scriptsync/pkg/channel"
)

// fakeChannel is a scripted channel for sync tests. The handler decides
// each call's outcome; every call is recorded as "op arg0 arg1 ...".
type fakeChannel struct {
	handler func(op string, params []string) ([]string, error)
	calls   []string
	closed  int
}

func (f *fakeChannel) Call(_ context.Context, op string, params ...string) ([]string, error) {
	f.calls = append(f.calls, strings.TrimSpace(op+" "+strings.Join(params, " ")))
	if f.handler == nil {
		return nil, errors.New("no handler")
	}
	return f.handler(op, params)
}

func (f *fakeChannel) Close() error {
	f.closed++
	return nil
}

var _ channel.Channel = (*fakeChannel)(nil)

// callsFor returns the recorded calls with the given operation name.
func (f *fakeChannel) callsFor(op string) []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, op) {
			out = append(out, c)
		}
	}
	return out
}
