package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beapsec/beap-core/internal/capsule"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/models"
)

const testFingerprint = "30f541b4a2aa1247ab1502ea0cf1d589a1b14eb9d62ec9e6f2b8d36343642a13"

func testPackage(method models.DeliveryMethod) *models.BeapPackage {
	return &models.BeapPackage{
		Version:           capsule.PackageVersion,
		RecipientMode:     models.RecipientPublic,
		DeliveryMethod:    method,
		SenderFingerprint: testFingerprint,
		MessageBody:       "hello",
		Attachments:       []models.CapsuleAttachment{},
		RasterArtefacts:   []models.RasterArtefact{},
		OriginalFiles:     []models.OriginalFile{},
	}
}

type savedFile struct {
	name string
	data []byte
}

func TestDeliver_Download(t *testing.T) {
	var saved []savedFile
	exec := NewExecutor(Capabilities{
		SaveFile: func(_ context.Context, name string, data []byte) error {
			saved = append(saved, savedFile{name, data})
			return nil
		},
	}, logger.Nop())

	pkg := testPackage(models.DeliveryDownload)
	res := exec.Deliver(context.Background(), pkg, "")

	require.True(t, res.Success, res.Message)
	require.Len(t, saved, 1)
	assert.True(t, strings.HasPrefix(saved[0].name, "beap-package-30f541b4-"), saved[0].name)
	assert.True(t, strings.HasSuffix(saved[0].name, ".beap.json"), saved[0].name)
	assert.Contains(t, res.Message, saved[0].name)

	// The saved bytes are the canonical encoding.
	want, err := capsule.EncodePackage(pkg)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, saved[0].data))
}

func TestDeliver_DownloadFilenameDeterministic(t *testing.T) {
	names := map[string][]string{}
	exec := NewExecutor(Capabilities{
		SaveFile: func(_ context.Context, name string, _ []byte) error {
			names["all"] = append(names["all"], name)
			return nil
		},
	}, logger.Nop())
	ctx := context.Background()

	exec.Deliver(ctx, testPackage(models.DeliveryDownload), "")
	exec.Deliver(ctx, testPackage(models.DeliveryDownload), "")
	other := testPackage(models.DeliveryDownload)
	other.MessageBody = "different content"
	exec.Deliver(ctx, other, "")

	all := names["all"]
	require.Len(t, all, 3)
	assert.Equal(t, all[0], all[1], "identical packages map to identical filenames")
	assert.NotEqual(t, all[0], all[2], "different content must change the filename")
}

func TestDeliver_DownloadFailureIsTerminal(t *testing.T) {
	calls := 0
	exec := NewExecutor(Capabilities{
		SaveFile: func(context.Context, string, []byte) error {
			calls++
			return errors.New("disk full")
		},
	}, logger.Nop())

	res := exec.Deliver(context.Background(), testPackage(models.DeliveryDownload), "")

	assert.False(t, res.Success)
	assert.Equal(t, 1, calls, "the executor never retries")
	var channelErr *DeliveryChannelError
	require.ErrorAs(t, res.Err, &channelErr)
	assert.Equal(t, "download", channelErr.Channel)
}

func TestDeliver_Messenger(t *testing.T) {
	var copied string
	exec := NewExecutor(Capabilities{
		WriteClipboard: func(_ context.Context, text string) error {
			copied = text
			return nil
		},
	}, logger.Nop())

	pkg := testPackage(models.DeliveryMessenger)
	res := exec.Deliver(context.Background(), pkg, "")

	require.True(t, res.Success, res.Message)
	want, err := capsule.EncodePackage(pkg)
	require.NoError(t, err)
	assert.Equal(t, string(want), copied)
}

func TestDeliver_MessengerClipboardDenied(t *testing.T) {
	exec := NewExecutor(Capabilities{
		WriteClipboard: func(context.Context, string) error {
			return errors.New("access denied by platform")
		},
	}, logger.Nop())

	res := exec.Deliver(context.Background(), testPackage(models.DeliveryMessenger), "")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrClipboardUnavailable)
}

func TestDeliver_Email(t *testing.T) {
	var to, body string
	exec := NewExecutor(Capabilities{
		ComposeEmail: func(_ context.Context, gotTo, _, gotBody string) error {
			to, body = gotTo, gotBody
			return nil
		},
	}, logger.Nop())

	pkg := testPackage(models.DeliveryEmail)
	res := exec.Deliver(context.Background(), pkg, "bob@example.com")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "bob@example.com", to)
	assert.Contains(t, body, `"version":1`)
}

func TestDeliver_EmailChannelError(t *testing.T) {
	exec := NewExecutor(Capabilities{
		ComposeEmail: func(context.Context, string, string, string) error {
			return &DeliveryChannelError{Channel: "email", Code: "oauth_expired", Err: errors.New("401")}
		},
	}, logger.Nop())

	res := exec.Deliver(context.Background(), testPackage(models.DeliveryEmail), "bob@example.com")

	assert.False(t, res.Success)
	var channelErr *DeliveryChannelError
	require.ErrorAs(t, res.Err, &channelErr)
	assert.Equal(t, "oauth_expired", channelErr.Code)
}

func TestDeliver_EmailMissingRecipient(t *testing.T) {
	exec := NewExecutor(Capabilities{
		ComposeEmail: func(context.Context, string, string, string) error { return nil },
	}, logger.Nop())

	res := exec.Deliver(context.Background(), testPackage(models.DeliveryEmail), "")

	assert.False(t, res.Success)
	var channelErr *DeliveryChannelError
	require.ErrorAs(t, res.Err, &channelErr)
	assert.Equal(t, "missing_recipient", channelErr.Code)
}

func TestDeliver_MissingCapability(t *testing.T) {
	exec := NewExecutor(Capabilities{}, logger.Nop())
	ctx := context.Background()

	for _, method := range []models.DeliveryMethod{models.DeliveryDownload, models.DeliveryMessenger, models.DeliveryEmail} {
		res := exec.Deliver(ctx, testPackage(method), "bob@example.com")
		assert.False(t, res.Success, "method %s", method)
	}
}

func TestDeliver_DoesNotMutatePackage(t *testing.T) {
	exec := NewExecutor(Capabilities{
		SaveFile: func(context.Context, string, []byte) error { return nil },
	}, logger.Nop())

	pkg := testPackage(models.DeliveryDownload)
	before, err := capsule.EncodePackage(pkg)
	require.NoError(t, err)

	exec.Deliver(context.Background(), pkg, "")

	after, err := capsule.EncodePackage(pkg)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after))
}

func TestDeliverHandshakeRequest_Download(t *testing.T) {
	var saved savedFile
	exec := NewExecutor(Capabilities{
		SaveFile: func(_ context.Context, name string, data []byte) error {
			saved = savedFile{name, data}
			return nil
		},
	}, logger.Nop())

	req := models.HandshakeRequest{
		SenderFingerprint: testFingerprint,
		SenderPublicKey:   bytes.Repeat([]byte{1}, 32),
		SenderDisplayName: "Alice",
		Message:           "let's talk",
		CreatedAt:         time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	res := exec.DeliverHandshakeRequest(context.Background(), req, models.DeliveryDownload, "")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, fmt.Sprintf("handshake-request-%s.beap-handshake.json", testFingerprint[:8]), saved.name)
	assert.Contains(t, string(saved.data), `"senderDisplayName":"Alice"`)
}

func TestDirectoryFileSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	save := DirectoryFileSaver(dir)

	require.NoError(t, save(context.Background(), "payload.json", []byte(`{"ok":true}`)))

	data, err := os.ReadFile(filepath.Join(dir, "payload.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
