// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
)

// SystemClipboard is a [WriteClipboardFunc] backed by the OS clipboard.
func SystemClipboard(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard on this platform", ErrClipboardUnavailable)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboardUnavailable, err)
	}
	return nil
}

// DirectoryFileSaver returns a [SaveFileFunc] that writes payloads into dir,
// creating it on first use. Writes go through a temp file and a rename so a
// crash never leaves a half-written package behind.
func DirectoryFileSaver(dir string) SaveFileFunc {
	return func(_ context.Context, filename string, data []byte) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		path := filepath.Join(dir, filename)
		tmp, err := os.CreateTemp(dir, filename+".tmp-*")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		if _, err = tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("writing %s: %w", filename, err)
		}
		if err = tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("closing temp file: %w", err)
		}
		if err = os.Rename(tmp.Name(), path); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("saving %s: %w", filename, err)
		}
		return nil
	}
}
