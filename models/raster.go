package models

// RasterPageData is one rendered page of a rasterized document. SHA256 is
// the lowercase hex digest of the rendered image bytes and must be
// recomputable from the Base64 payload; this is the content-addressing
// guarantee that lets a recipient verify a preview matches what the sender
// claims to have sent.
type RasterPageData struct {
	Page   int    `json:"page"` // 1-based, contiguous
	MIME   string `json:"mime"`
	SHA256 string `json:"sha256"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
	Base64 string `json:"base64"`
}

// RasterProof is the ordered per-page hash chain attesting to a document's
// visual content at send time. The proof is complete only when every page of
// the parsed document has an entry.
type RasterProof struct {
	DPI      int              `json:"dpi"`
	Complete bool             `json:"complete"`
	Pages    []RasterPageData `json:"pages"`
}

// RasterArtefact is one raster page flattened into the package-level
// artefact list, tagged with the attachment it belongs to.
type RasterArtefact struct {
	AttachmentID string `json:"attachmentId"`
	RasterPageData
}
