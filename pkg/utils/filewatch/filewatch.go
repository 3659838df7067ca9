package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext derives a context from ctx that is canceled as
// soon as any of files is modified (written, created, removed, or
// renamed). The cancel cause names the file and the operation.
//
// Callers that cannot reload on the fly watch their config this way
// and exit, leaving the restart to the supervisor.
//
// The returned cancel func stops the watch. On error the watch never
// started and both the context and cancel func are nil.
func UntilModifyContext(ctx context.Context, files ...string) (context.Context, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()

		// the first event is enough; everything after the cancel is moot
		select {
		case <-cctx.Done():
		case event, ok := <-w.Events:
			if ok {
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
