package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/beapsec/beap-core/internal/app"
	"github.com/beapsec/beap-core/internal/config"
	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/pipeline"
	"github.com/beapsec/beap-core/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewFileLogger("beap-core")
	cfg, err := config.GetCoreConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	// Parse and rasterize capabilities come from host integrations; the
	// bare binary runs with both stages disabled.
	core, err := app.NewApp(ctx, cfg, pipeline.Capabilities{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init app error")
	}
	defer core.Close()

	args := flag.Args()
	command := "identity"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "identity":
		runIdentity(ctx, core, log)
	case "handshake":
		runHandshake(ctx, core, log, args)
	case "accept":
		runAccept(ctx, core, log, args)
	case "reject":
		runReject(ctx, core, log, args)
	case "list":
		runList(ctx, core, log)
	case "send":
		runSend(ctx, core, log, args, nil)
	case "send-private":
		runSendPrivate(ctx, core, log, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

const usage = `commands:
  identity                                 print the local fingerprint (default)
  handshake <name> <email> [message]       create and export a handshake request
  accept <id> <peer-public-key-base64>     accept a pending handshake
  reject <id>                              reject a pending handshake
  list                                     list accepted handshakes
  send <message> [files...]                send a public package (download)
  send-private <id> <message> [files...]   send a private package (download)
`

func runIdentity(ctx context.Context, core *app.App, log *logger.Logger) {
	id, err := core.Identity(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load identity error")
	}

	fp := id.Fingerprint()
	fmt.Printf("Identity fingerprint: %s\n", identity.FormatGrouped(fp))
	fmt.Printf("Short code: %s\n", identity.FormatShort(fp))
}

func runHandshake(ctx context.Context, core *app.App, log *logger.Logger, args []string) {
	if len(args) < 2 {
		log.Fatal().Msg("usage: handshake <name> <email> [message]")
	}
	message := ""
	if len(args) > 2 {
		message = strings.Join(args[2:], " ")
	}

	hs, res, err := core.SendHandshake(ctx, args[0], args[1], message, args[0], models.DeliveryDownload, "")
	if err != nil {
		log.Fatal().Err(err).Msg("create handshake error")
	}
	if !res.Success {
		log.Fatal().Err(res.Err).Msg("export handshake request error")
	}

	fmt.Printf("Handshake %s recorded as %s\n", hs.ID, hs.State)
	fmt.Println(res.Message)
}

func runAccept(ctx context.Context, core *app.App, log *logger.Logger, args []string) {
	if len(args) != 2 {
		log.Fatal().Msg("usage: accept <id> <peer-public-key-base64>")
	}
	peerKey, err := base64.StdEncoding.DecodeString(args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid peer public key encoding")
	}

	hs, err := core.AcceptHandshake(ctx, args[0], peerKey)
	if err != nil {
		log.Fatal().Err(err).Msg("accept handshake error")
	}
	fmt.Printf("Handshake %s is now %s (peer %s)\n", hs.ID, hs.State, hs.PeerFingerprint)
}

func runReject(ctx context.Context, core *app.App, log *logger.Logger, args []string) {
	if len(args) != 1 {
		log.Fatal().Msg("usage: reject <id>")
	}

	hs, err := core.RejectHandshake(ctx, args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("reject handshake error")
	}
	fmt.Printf("Handshake %s is now %s\n", hs.ID, hs.State)
}

func runList(ctx context.Context, core *app.App, log *logger.Logger) {
	accepted, err := core.ListAcceptedHandshakes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list handshakes error")
	}
	if len(accepted) == 0 {
		fmt.Println("No accepted handshakes")
		return
	}
	for _, hs := range accepted {
		fmt.Printf("%s  %s  %s\n", hs.ID, hs.PeerFingerprint, hs.PeerLabel)
	}
}

func runSend(ctx context.Context, core *app.App, log *logger.Logger, args []string, recipient *models.SelectedRecipient) {
	if len(args) < 1 {
		log.Fatal().Msg("usage: send <message> [files...]")
	}

	attachments, err := loadAttachments(args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("read attachments error")
	}

	req := app.SendRequest{
		Method:      models.DeliveryDownload,
		MessageBody: args[0],
		Attachments: attachments,
	}
	if recipient != nil {
		req.Private = true
		req.Recipient = *recipient
		req.EncryptMessage = true
	}

	res, err := core.SendPackage(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("send package error")
	}

	printSendResult(res)
}

func runSendPrivate(ctx context.Context, core *app.App, log *logger.Logger, args []string) {
	if len(args) < 2 {
		log.Fatal().Msg("usage: send-private <id> <message> [files...]")
	}

	accepted, err := core.ListAcceptedHandshakes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list handshakes error")
	}

	var recipient *models.SelectedRecipient
	for _, hs := range accepted {
		if hs.ID == args[0] {
			recipient = &models.SelectedRecipient{
				HandshakeID:     hs.ID,
				PeerFingerprint: hs.PeerFingerprint,
			}
			break
		}
	}
	if recipient == nil {
		log.Fatal().Str("handshake_id", args[0]).Msg("no accepted handshake with that id")
	}

	runSend(ctx, core, log, args[1:], recipient)
}

func loadAttachments(paths []string) ([]models.RawAttachment, error) {
	attachments := make([]models.RawAttachment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		attachments = append(attachments, models.RawAttachment{
			Name: filepath.Base(path),
			MIME: mimeType,
			Data: data,
		})
	}
	return attachments, nil
}

func printSendResult(res *app.SendResult) {
	deliveryResult := res.Delivery
	if deliveryResult.Success {
		fmt.Println(deliveryResult.Message)
	} else {
		fmt.Printf("Delivery failed: %s\n", deliveryResult.Message)
	}
	for _, advisory := range res.Advisories {
		fmt.Printf("Advisory: %s\n", advisory)
	}
}
