package mirror

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// writeArtifacts renders state and writes every artifact concurrently.
// Failures are logged and counted; none of them fail the run.
func (m *Mirror) writeArtifacts(ctx context.Context, logger *slog.Logger, state mirrortypes.State) (int, int) {
	if m.renderer == nil {
		return 0, 0
	}

	artifacts, err := m.renderer.Render(state, m.now())
	if err != nil {
		logger.Error("failed to render artifacts",
			"error", errors.Wrap(err, errors.CodeArtifactWriteFailed, "rendering artifacts"))
		return 0, 1
	}

	var written, failed atomic.Int32
	var g errgroup.Group
	for _, a := range artifacts {
		g.Go(func() error {
			contentType := a.ContentType
			if contentType == "" {
				contentType = store.ContentTypeFor(a.Key, a.Data, m.ext)
			}
			if err := m.objects.Put(ctx, a.Key, a.Data, contentType); err != nil {
				failed.Add(1)
				logger.Warn("failed to write artifact",
					"key", a.Key,
					"error", errors.WrapWithContext(err, errors.CodeArtifactWriteFailed, "writing artifact",
						map[string]interface{}{"key": a.Key}),
				)
				return nil
			}
			written.Add(1)
			logger.Debug("artifact written", "key", a.Key, "size", len(a.Data))
			return nil
		})
	}
	_ = g.Wait()

	return int(written.Load()), int(failed.Load())
}
