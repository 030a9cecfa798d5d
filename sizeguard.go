package datafy

import (
	"context"

	slogctx "github.com/veqryn/slog-context"
)

// checkSize probes a remote source and rejects it when the advertised length
// exceeds limit. The probe is advisory: failures and missing lengths let the
// fetch proceed.
func (r *Resolver) checkSize(ctx context.Context, src *remoteSource, limit int64) error {
	if limit <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	log := slogctx.FromCtx(ctx)
	meta, err := src.fetcher.Probe(ctx, src.u)
	if err != nil {
		log.Debug("size probe failed, proceeding", "error", err)
		return nil
	}
	if meta == nil || meta.ContentLength < 0 {
		log.Debug("size probe returned no length, proceeding")
		return nil
	}
	if meta.ContentLength > limit {
		return &SizeError{URI: src.location(), Length: meta.ContentLength, Limit: limit}
	}
	return nil
}
