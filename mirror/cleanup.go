package mirror

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/differ"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/executor"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// Cleanup deletes mirrored files that the catalog no longer offers, then
// re-renders the artifacts and persists the state from a fresh enumeration.
// With dryRun set it only reports the stale keys.
//
// The store is always enumerated; the snapshot is not trusted here. A
// catalog failure aborts before anything is deleted.
func (m *Mirror) Cleanup(ctx context.Context, dryRun bool) (*mirrortypes.CleanupResult, error) {
	start := m.now()
	result := &mirrortypes.CleanupResult{
		RunID:  uuid.NewString(),
		DryRun: dryRun,
	}
	logger := m.logger.With("run_id", result.RunID)
	defer func() {
		result.Duration = m.now().Sub(start)
	}()

	state, err := m.states.Enumerate(ctx)
	if err != nil {
		return result, err
	}
	result.Stored = len(state)

	entries, err := m.catalog.List(ctx)
	if err != nil {
		return result, errors.Wrap(err, errors.CodeCatalogUnavailable, "listing catalog")
	}
	candidates := differ.Candidates(entries)
	result.Candidates = len(candidates)
	result.Stale = differ.Stale(state.Keys(), candidates)

	logger.Info("stale files found", "stored", result.Stored, "candidates", result.Candidates, "stale", len(result.Stale))
	if dryRun {
		for _, key := range result.Stale {
			logger.Info("would delete", "key", key)
		}
		return result, nil
	}

	maxInFlight, _ := executor.Config{MaxInFlight: m.maxInFlight}.Limits()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, key := range result.Stale {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := m.objects.Delete(gctx, key)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.DeleteFailures++
				logger.Warn("failed to delete", "key", key, "error", err)
				return nil
			}
			result.Deleted++
			logger.Info("deleted", "key", key)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// Re-read what is actually stored rather than trusting the deletes.
	state, err = m.states.Enumerate(ctx)
	if err != nil {
		return result, err
	}

	written, failed := m.writeArtifacts(ctx, logger, state)
	result.ArtifactsWritten = written
	result.ArtifactsFailed = failed

	if err := m.states.Save(ctx, state); err != nil {
		return result, err
	}

	if result.DeleteFailures > 0 {
		return result, errors.Newf(errors.CodeDeleteFailed, "%d of %d stale files could not be deleted",
			result.DeleteFailures, len(result.Stale))
	}
	logger.Info("cleanup finished", "deleted", result.Deleted, "records", len(state))
	return result, nil
}
