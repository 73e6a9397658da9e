package models

// RawAttachment is the caller-supplied input to the attachment pipeline:
// arbitrary bytes plus the declared name and MIME type from the file picker.
type RawAttachment struct {
	Name string
	MIME string
	Data []byte
}

// CapsuleAttachment is one processed attachment inside a BEAP package.
//
// SemanticContent, PreviewRef and RasterProof are filled in asynchronously
// and independently; the record is valid (sendable) even when neither the
// parse nor the rasterize stage ever completed. ProcessingErrors collects the
// non-fatal stage errors so the caller can warn the user without blocking
// the send.
type CapsuleAttachment struct {
	ID                string       `json:"id"`
	OriginalName      string       `json:"originalName"`
	OriginalSize      int64        `json:"originalSize"`
	OriginalType      string       `json:"originalType"`
	SemanticContent   string       `json:"semanticContent,omitempty"`
	SemanticExtracted bool         `json:"semanticExtracted"`
	EncryptedRef      string       `json:"encryptedRef"`
	EncryptedHash     string       `json:"encryptedHash"` // lowercase hex SHA-256 of the encrypted blob
	PreviewRef        string       `json:"previewRef,omitempty"`
	RasterProof       *RasterProof `json:"rasterProof,omitempty"`
	IsMedia           bool         `json:"isMedia"`
	HasTranscript     bool         `json:"hasTranscript"`
	ProcessingErrors  []string     `json:"processingErrors,omitempty"`
}
