package mirror

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/checksum"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/differ"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/executor"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/planner"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// run carries the mutable state of one Sync call. It is only touched from
// the goroutine that called Sync.
type run struct {
	m      *Mirror
	logger *slog.Logger
	result *mirrortypes.Result
	state  mirrortypes.State
}

// Sync runs one pass: Loading, Diffing, Idle or Processing, Finalizing, and
// Done or Failed. The returned Result is never nil. A non-nil error means the
// run ended in Failed.
//
// Fetch and validation failures skip the item. An upload failure stops the
// run after persisting everything committed before it.
func (m *Mirror) Sync(ctx context.Context) (*mirrortypes.Result, error) {
	r := &run{
		m: m,
		result: &mirrortypes.Result{
			RunID:     uuid.NewString(),
			State:     mirrortypes.StateInit,
			StartedAt: m.now(),
		},
	}
	r.logger = m.logger.With("run_id", r.result.RunID)
	defer func() {
		r.result.Duration = m.now().Sub(r.result.StartedAt)
	}()

	r.logger.Info("sync started")

	r.transition(mirrortypes.StateLoading)
	state, source, err := m.states.Load(ctx)
	if err != nil {
		return r.fail(err)
	}
	r.state = state
	r.result.Source = string(source)
	r.result.Known = len(state)

	r.transition(mirrortypes.StateDiffing)
	entries, err := m.catalog.List(ctx)
	if err != nil {
		return r.fail(errors.Wrap(err, errors.CodeCatalogUnavailable, "listing catalog"))
	}

	missing := differ.Ordered(entries, state.Keys())
	r.result.Candidates = len(differ.Candidates(entries))
	r.result.Missing = len(missing)

	plan := planner.New(m.limit).Plan(missing)
	r.logger.Info("catalog diffed",
		"candidates", r.result.Candidates,
		"known", r.result.Known,
		"missing", r.result.Missing,
		"planned", len(plan.Items),
		"deferred", plan.Deferred,
	)

	if len(plan.Items) == 0 {
		r.transition(mirrortypes.StateIdle)
	} else {
		r.transition(mirrortypes.StateProcessing)
		if err := r.process(ctx, plan.Items); err != nil {
			// Keep whatever was committed before the failure.
			if perr := m.states.Save(context.WithoutCancel(ctx), r.state); perr != nil {
				err = errors.Join(err, perr)
			}
			return r.fail(err)
		}
	}

	r.transition(mirrortypes.StateFinalizing)
	written, failed := m.writeArtifacts(ctx, r.logger, r.state)
	r.result.ArtifactsWritten = written
	r.result.ArtifactsFailed = failed

	if err := m.states.Save(ctx, r.state); err != nil {
		return r.fail(err)
	}

	r.transition(mirrortypes.StateDone)
	r.logger.Info("sync finished",
		"committed", r.result.Committed,
		"fetch_failed", r.result.FetchFailed,
		"invalid", r.result.Invalid,
		"bytes", r.result.Bytes,
		"records", len(r.state),
	)
	return r.result, nil
}

// process consumes the work items in Seq order.
func (r *run) process(ctx context.Context, items []mirrortypes.WorkItem) error {
	p := executor.New(ctx, r.m.fetcher, items, executor.Config{
		MaxInFlight:  r.m.maxInFlight,
		MaxBuffered:  r.m.maxBuffered,
		FetchTimeout: r.m.fetchTimeout,
		Spool:        r.m.spool,
		SpoolPrefix:  r.result.RunID,
		Logger:       r.logger,
	})
	defer func() {
		if err := p.Close(); err != nil {
			r.logger.Warn("failed to clean up spool", "error", err)
		}
		stats := p.Stats()
		r.result.PeakInFlight = stats.PeakInFlight
		r.result.PeakBuffered = stats.PeakBuffered
	}()

	for _, item := range items {
		outcome, err := p.Await(ctx, item.Seq)
		if err != nil {
			return err
		}

		report, err := r.consume(ctx, outcome)
		p.Release(item.Seq)
		r.record(report)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// consume validates, uploads and commits one fetched item. Only an upload
// failure is returned as an error.
func (r *run) consume(ctx context.Context, o mirrortypes.FetchOutcome) (mirrortypes.ItemReport, error) {
	report := mirrortypes.ItemReport{Item: o.Item, Size: o.Size}
	key := o.Item.Entry.Filename

	if !o.Fetched() {
		report.Status = mirrortypes.ItemFetchFailed
		report.Reason = o.Err.Error()
		return report, nil
	}

	data, err := readContent(o.Content)
	if err != nil {
		report.Status = mirrortypes.ItemInvalid
		report.Kind = mirrortypes.InvalidUnreadableContent
		report.Reason = checksum.ReasonFileError
		return report, nil
	}

	if v := r.m.validator.ValidateBytes(key, data); !v.Valid {
		report.Status = mirrortypes.ItemInvalid
		report.Kind = v.Kind
		report.Reason = v.Reason
		return report, nil
	}

	if err := r.m.objects.Put(ctx, key, data, store.ContentTypeFor(key, data, r.m.ext)); err != nil {
		report.Status = mirrortypes.ItemUploadFailed
		report.Reason = err.Error()
		return report, errors.WrapWithContext(err, errors.CodeUploadFailed, "upload failed",
			map[string]interface{}{"key": key})
	}

	r.state.Put(mirrortypes.Record{
		Key:          key,
		LastModified: r.m.now(),
		Size:         int64(len(data)),
	})
	report.Status = mirrortypes.ItemCommitted
	report.Size = int64(len(data))
	return report, nil
}

func (r *run) record(report mirrortypes.ItemReport) {
	r.result.Items = append(r.result.Items, report)

	attrs := []any{
		"seq", report.Item.Seq,
		"file", report.Item.Entry.Filename,
		"status", string(report.Status),
	}
	switch report.Status {
	case mirrortypes.ItemCommitted:
		r.result.Committed++
		r.result.Bytes += report.Size
		r.logger.Info("item committed", append(attrs, "size", report.Size)...)
	case mirrortypes.ItemFetchFailed:
		r.result.FetchFailed++
		r.logger.Warn("item skipped", append(attrs, "reason", report.Reason)...)
	case mirrortypes.ItemInvalid:
		r.result.Invalid++
		r.logger.Warn("item skipped", append(attrs, "kind", string(report.Kind), "reason", report.Reason)...)
	case mirrortypes.ItemUploadFailed:
		r.logger.Error("upload failed", append(attrs, "reason", report.Reason)...)
	}

	r.m.progress.ItemDone(report)
}

func (r *run) transition(to mirrortypes.RunState) {
	from := r.result.State
	r.result.State = to
	r.logger.Debug("state changed", "from", from.String(), "to", to.String())
	r.m.progress.StateChanged(from, to)
}

func (r *run) fail(err error) (*mirrortypes.Result, error) {
	from := r.result.State
	r.transition(mirrortypes.StateFailed)
	r.logger.Error("sync failed",
		"phase", from.String(),
		"code", string(errors.GetCode(err)),
		"error", err,
	)
	return r.result, err
}

func readContent(c mirrortypes.Content) ([]byte, error) {
	if c == nil {
		return nil, errors.New(errors.CodeInternal, "no content")
	}
	rc, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
