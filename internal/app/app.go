// SPDX-License-Identifier: Apache-2.0

// Package app wires the beap-core components into a single runtime: storage,
// identity, handshake protocol, attachment pipeline, capsule builder and
// delivery executor. It exposes the high-level operations the CLI drives.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/beapsec/beap-core/internal/adapter"
	"github.com/beapsec/beap-core/internal/capsule"
	"github.com/beapsec/beap-core/internal/config"
	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/delivery"
	"github.com/beapsec/beap-core/internal/handshake"
	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/pipeline"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/internal/workers"
	"github.com/beapsec/beap-core/models"
)

const (
	expirySweepInterval = time.Hour
	handshakeMaxAge     = 72 * time.Hour
)

// App is the assembled beap-core runtime.
type App struct {
	cfg *config.CoreConfig

	identities identity.Manager
	protocol   handshake.Protocol
	builder    capsule.Builder
	executor   delivery.Executor

	keychain crypto.KeyChainService
	blobs    store.BlobStore
	caps     pipeline.Capabilities
	dek      []byte

	db     *store.DB
	expiry *workers.ExpiryWorker

	logger *logger.Logger
}

// NewApp wires all components from the validated config. caps supplies the
// external parse/rasterize capabilities; either function may be nil, which
// disables its stage.
func NewApp(ctx context.Context, cfg *config.CoreConfig, caps pipeline.Capabilities, log *logger.Logger) (*App, error) {
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("connect handshake db: %w", err)
	}
	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate handshake db: %w", err)
	}

	blobs, err := store.NewFileBlobStore(cfg.Storage.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("create blob store: %w", err)
	}

	keychain := crypto.NewKeyChainService()
	// Session DEK for encrypted attachment originals; the identity file
	// store derives its own key material from the passphrase.
	dek, err := keychain.GenerateDEK()
	if err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}

	idStore := store.NewIdentityFileStore(cfg.Storage.IdentityPath, cfg.App.Passphrase, keychain, log)
	identities := identity.NewManager(idStore, log)

	hsStore := store.NewSQLiteHandshakeStore(db, log)
	protocol := handshake.NewProtocol(hsStore, log)

	builder := capsule.NewBuilder(identities, protocol, log)

	deliveryCaps := delivery.Capabilities{
		SaveFile:       delivery.DirectoryFileSaver(cfg.Delivery.DownloadDir),
		WriteClipboard: delivery.SystemClipboard,
	}
	if cfg.Mailer.Address != "" {
		mailer, err := adapter.NewHTTPMailComposer(cfg.Mailer, log)
		if err != nil {
			return nil, fmt.Errorf("create mail composer: %w", err)
		}
		deliveryCaps.ComposeEmail = mailer.Compose
	}
	executor := delivery.NewExecutor(deliveryCaps, log)

	caps.RasterDPI = cfg.Pipeline.RasterDPI

	expiry := workers.NewExpiryWorker(hsStore, protocol, expirySweepInterval, handshakeMaxAge, log)
	workers.NewWorkers(expiry).Run()

	return &App{
		cfg:        cfg,
		identities: identities,
		protocol:   protocol,
		builder:    builder,
		executor:   executor,
		keychain:   keychain,
		blobs:      blobs,
		caps:       caps,
		dek:        dek,
		db:         db,
		expiry:     expiry,
		logger:     log,
	}, nil
}

// Close stops background workers and releases the database handle.
func (a *App) Close() error {
	a.expiry.Stop()
	return a.db.Close()
}

// Identity loads or creates the local identity.
func (a *App) Identity(ctx context.Context) (*identity.Identity, error) {
	return a.identities.GetOrCreateIdentity(ctx)
}

// SendHandshake creates an outgoing handshake request bound to the current
// identity, records it as pending and dispatches it over the given channel.
func (a *App) SendHandshake(ctx context.Context, displayName, email, message, recipientLabel string, method models.DeliveryMethod, recipientAddress string) (models.Handshake, delivery.DeliveryResult, error) {
	id, err := a.identities.GetOrCreateIdentity(ctx)
	if err != nil {
		return models.Handshake{}, delivery.DeliveryResult{}, err
	}

	req, err := a.protocol.CreateRequest(id, displayName, email, message)
	if err != nil {
		return models.Handshake{}, delivery.DeliveryResult{}, err
	}

	hs, err := a.protocol.RecordPendingOutgoing(ctx, req, recipientLabel, id.Fingerprint().Hex())
	if err != nil {
		return models.Handshake{}, delivery.DeliveryResult{}, err
	}

	res := a.executor.DeliverHandshakeRequest(ctx, req, method, recipientAddress)
	return hs, res, nil
}

// AcceptHandshake records the peer's public key on a pending handshake.
func (a *App) AcceptHandshake(ctx context.Context, handshakeID string, peerPublicKey []byte) (models.Handshake, error) {
	return a.protocol.Accept(ctx, handshakeID, peerPublicKey)
}

// RejectHandshake declines a pending handshake.
func (a *App) RejectHandshake(ctx context.Context, handshakeID string) (models.Handshake, error) {
	return a.protocol.Reject(ctx, handshakeID)
}

// ListAcceptedHandshakes returns every handshake usable as a private-mode
// recipient.
func (a *App) ListAcceptedHandshakes(ctx context.Context) ([]models.Handshake, error) {
	return a.protocol.ListAccepted(ctx)
}

// SendRequest is the input to [App.SendPackage].
type SendRequest struct {
	// Private selects the handshake-bound mode; Recipient must then name an
	// accepted handshake.
	Private   bool
	Recipient models.SelectedRecipient
	// EncryptMessage requests capsule-bound message encryption (private
	// mode only).
	EncryptMessage bool

	Method           models.DeliveryMethod
	RecipientAddress string

	MessageBody string
	Attachments []models.RawAttachment
}

// SendResult is the outcome of [App.SendPackage].
type SendResult struct {
	Package    *models.BeapPackage
	Advisories []string
	Delivery   delivery.DeliveryResult
}

// SendPackage runs the full outgoing flow: process every attachment through
// a fresh pipeline, assemble the package, dispatch it. Attachment processing
// failures surface as advisories, never as send failures.
func (a *App) SendPackage(ctx context.Context, req SendRequest) (*SendResult, error) {
	id, err := a.identities.GetOrCreateIdentity(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := a.processAttachments(ctx, req.Attachments)
	if err != nil {
		return nil, err
	}

	var cfg capsule.BuildConfig
	if req.Private {
		cfg = capsule.PrivateConfig{
			DeliveryMethod:    req.Method,
			SenderFingerprint: id.Fingerprint().Hex(),
			MessageBody:       req.MessageBody,
			Recipient:         req.Recipient,
			EncryptMessage:    req.EncryptMessage,
			Attachments:       completed,
		}
	} else {
		cfg = capsule.PublicConfig{
			DeliveryMethod:    req.Method,
			SenderFingerprint: id.Fingerprint().Hex(),
			MessageBody:       req.MessageBody,
			Attachments:       completed,
		}
	}

	built, err := a.builder.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res := a.executor.Deliver(ctx, built.Package, req.RecipientAddress)
	return &SendResult{
		Package:    built.Package,
		Advisories: built.Advisories,
		Delivery:   res,
	}, nil
}

// processAttachments enqueues every raw attachment on one pipeline instance
// and waits for all results. Enqueue rejections (size or count limits) fail
// the whole send so nothing is silently dropped.
func (a *App) processAttachments(ctx context.Context, raws []models.RawAttachment) ([]capsule.CompletedAttachment, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	p := pipeline.NewPipeline(a.caps, a.blobs, a.keychain, a.dek, a.logger)

	results := make([]<-chan models.CapsuleAttachment, 0, len(raws))
	for _, raw := range raws {
		ch, err := p.Enqueue(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", raw.Name, err)
		}
		results = append(results, ch)
	}

	completed := make([]capsule.CompletedAttachment, 0, len(raws))
	for i, ch := range results {
		select {
		case att := <-ch:
			completed = append(completed, capsule.CompletedAttachment{Attachment: att, Raw: raws[i]})
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return completed, nil
}
