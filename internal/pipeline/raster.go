// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/beapsec/beap-core/internal/utils"
	"github.com/beapsec/beap-core/models"
)

// buildProof converts a rasterizer result into a [models.RasterProof]. Pages
// are numbered contiguously from 1 in render order; each page carries the
// lowercase-hex SHA-256 of its rendered bytes so the proof is verifiable
// from the base64 payloads alone. The proof is marked complete only when the
// rasterizer rendered every page of the source document.
func buildProof(res RasterResult, dpi int) (*models.RasterProof, error) {
	if len(res.Pages) == 0 {
		return nil, errors.New("rasterizer returned no pages")
	}

	proof := &models.RasterProof{
		DPI:   dpi,
		Pages: make([]models.RasterPageData, 0, len(res.Pages)),
	}
	for i, page := range res.Pages {
		if len(page.Data) == 0 {
			return nil, fmt.Errorf("page %d: empty render", i+1)
		}
		proof.Pages = append(proof.Pages, models.RasterPageData{
			Page:   i + 1,
			MIME:   page.MIME,
			SHA256: utils.HashHex(page.Data),
			Width:  page.Width,
			Height: page.Height,
			Bytes:  len(page.Data),
			Base64: base64.StdEncoding.EncodeToString(page.Data),
		})
	}

	total := res.TotalPages
	if total == 0 {
		total = len(res.Pages)
	}
	proof.Complete = len(res.Pages) >= total
	return proof, nil
}

// VerifyProof checks a raster proof the way a recipient would: page numbers
// must be contiguous starting at 1, and every page's SHA256 must match a
// fresh hash of its decoded Base64 payload.
func VerifyProof(proof *models.RasterProof) error {
	if proof == nil {
		return errors.New("nil raster proof")
	}
	if len(proof.Pages) == 0 {
		return errors.New("raster proof has no pages")
	}
	for i, page := range proof.Pages {
		if page.Page != i+1 {
			return fmt.Errorf("page numbering broken: position %d holds page %d", i+1, page.Page)
		}
		data, err := base64.StdEncoding.DecodeString(page.Base64)
		if err != nil {
			return fmt.Errorf("page %d: decoding payload: %w", page.Page, err)
		}
		if utils.HashHex(data) != page.SHA256 {
			return fmt.Errorf("page %d: hash mismatch", page.Page)
		}
		if page.Bytes != len(data) {
			return fmt.Errorf("page %d: size mismatch: declared %d, payload %d", page.Page, page.Bytes, len(data))
		}
	}
	return nil
}
