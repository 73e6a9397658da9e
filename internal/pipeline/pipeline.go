// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/internal/utils"
	"github.com/beapsec/beap-core/models"
)

type pipeline struct {
	caps  Capabilities
	blobs store.BlobStore
	keys  crypto.KeyChainService
	dek   []byte
	ids   *utils.UUIDGenerator

	logger *logger.Logger

	mu     sync.Mutex
	queued int
}

// NewPipeline creates a Pipeline for one outgoing package. Originals are
// encrypted with dek and archived in blobs; caps supplies the external parse
// and rasterize functions.
func NewPipeline(caps Capabilities, blobs store.BlobStore, keys crypto.KeyChainService, dek []byte, log *logger.Logger) Pipeline {
	if caps.RasterDPI <= 0 {
		caps.RasterDPI = DefaultRasterDPI
	}
	log.Debug().Int("raster_dpi", caps.RasterDPI).Msg("creating attachment pipeline")
	return &pipeline{
		caps:   caps,
		blobs:  blobs,
		keys:   keys,
		dek:    dek,
		ids:    utils.NewUUIDGenerator(),
		logger: log,
	}
}

func (p *pipeline) Enqueue(ctx context.Context, raw models.RawAttachment) (<-chan models.CapsuleAttachment, error) {
	p.mu.Lock()
	if p.queued >= MaxAttachments {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: package already has %d attachments", ErrAttachmentLimitExceeded, MaxAttachments)
	}
	if len(raw.Data) > MaxAttachmentSize {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrAttachmentLimitExceeded, raw.Name, len(raw.Data), MaxAttachmentSize)
	}
	p.queued++
	p.mu.Unlock()

	att := models.CapsuleAttachment{
		ID:           p.ids.Generate(),
		OriginalName: raw.Name,
		OriginalSize: int64(len(raw.Data)),
		OriginalType: raw.MIME,
		IsMedia:      isMediaMIME(raw.MIME),
	}

	// Local copy: the caller owns raw.Data and may reuse the buffer while
	// the stages are still running.
	data := append([]byte(nil), raw.Data...)

	out := make(chan models.CapsuleAttachment, 1)
	go p.process(ctx, att, data, out)
	return out, nil
}

func (p *pipeline) Enqueued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued
}

type parseOutcome struct {
	res ParseResult
	err error
}

type rasterOutcome struct {
	res RasterResult
	err error
}

// process archives the original, runs both stages concurrently, merges their
// outcomes into att and delivers it. All mutation happens on the local att
// value; nothing is shared until the send on out.
func (p *pipeline) process(ctx context.Context, att models.CapsuleAttachment, data []byte, out chan<- models.CapsuleAttachment) {
	log := p.logger.With().Str("attachment_id", att.ID).Str("name", att.OriginalName).Logger()

	if err := p.archive(ctx, &att, data); err != nil {
		log.Warn().Err(err).Msg("archiving original failed")
		att.ProcessingErrors = append(att.ProcessingErrors, "archive: "+err.Error())
	}

	parseCh := make(chan parseOutcome, 1)
	rasterCh := make(chan rasterOutcome, 1)
	go func() { parseCh <- p.runParse(ctx, data, att.OriginalType) }()
	go func() { rasterCh <- p.runRasterize(ctx, data, att.OriginalType) }()

	pending := 2
	for pending > 0 {
		select {
		case po := <-parseCh:
			pending--
			if po.err != nil {
				log.Warn().Err(po.err).Msg("parse stage failed")
				att.ProcessingErrors = append(att.ProcessingErrors, "parse: "+po.err.Error())
				continue
			}
			att.SemanticContent = po.res.Text
			att.SemanticExtracted = po.res.Extracted
			att.HasTranscript = po.res.HasTranscript
		case ro := <-rasterCh:
			pending--
			if ro.err != nil {
				log.Warn().Err(ro.err).Msg("rasterize stage failed")
				att.ProcessingErrors = append(att.ProcessingErrors, "rasterize: "+ro.err.Error())
				continue
			}
			proof, err := buildProof(ro.res, p.caps.RasterDPI)
			if err != nil {
				log.Warn().Err(err).Msg("raster proof rejected")
				att.ProcessingErrors = append(att.ProcessingErrors, "rasterize: "+err.Error())
				continue
			}
			att.RasterProof = proof
			p.storePreview(ctx, &att, ro.res.Pages[0])
		case <-ctx.Done():
			// The stage goroutines write into buffered channels, so they do
			// not leak even when nobody drains them anymore.
			att.ProcessingErrors = append(att.ProcessingErrors, "cancelled: "+ctx.Err().Error())
			pending = 0
		}
	}

	out <- att
}

// archive encrypts the original bytes with the package DEK and writes the
// blob to the store, filling in EncryptedRef and EncryptedHash.
func (p *pipeline) archive(ctx context.Context, att *models.CapsuleAttachment, data []byte) error {
	blob, err := p.keys.EncryptBytes(data, p.dek)
	if err != nil {
		return fmt.Errorf("encrypting original: %w", err)
	}
	ref := "att-" + att.ID
	if err = p.blobs.Put(ctx, ref, blob); err != nil {
		return fmt.Errorf("storing encrypted original: %w", err)
	}
	att.EncryptedRef = ref
	att.EncryptedHash = utils.HashHex(blob)
	return nil
}

// storePreview archives the first rendered page as the attachment preview.
// Best-effort: a storage failure is recorded, the proof stays valid.
func (p *pipeline) storePreview(ctx context.Context, att *models.CapsuleAttachment, page RasterPage) {
	ref := "preview-" + att.ID
	if err := p.blobs.Put(ctx, ref, page.Data); err != nil {
		att.ProcessingErrors = append(att.ProcessingErrors, "preview: "+err.Error())
		return
	}
	att.PreviewRef = ref
}

func (p *pipeline) runParse(ctx context.Context, data []byte, mime string) (out parseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = parseOutcome{err: fmt.Errorf("parser panic: %v", r)}
		}
	}()
	if p.caps.Parse == nil {
		return parseOutcome{err: fmt.Errorf("parse: %w", ErrNoCapability)}
	}
	res, err := p.caps.Parse(ctx, data, mime)
	return parseOutcome{res: res, err: err}
}

func (p *pipeline) runRasterize(ctx context.Context, data []byte, mime string) (out rasterOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rasterOutcome{err: fmt.Errorf("rasterizer panic: %v", r)}
		}
	}()
	if p.caps.Rasterize == nil {
		return rasterOutcome{err: fmt.Errorf("rasterize: %w", ErrNoCapability)}
	}
	res, err := p.caps.Rasterize(ctx, data, mime, p.caps.RasterDPI)
	return rasterOutcome{res: res, err: err}
}

func isMediaMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/") ||
		strings.HasPrefix(mime, "audio/") ||
		strings.HasPrefix(mime, "video/")
}
