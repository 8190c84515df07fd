package model

import "time"

// Batch represents a unit of atomic visibility grouping items written by one
// admin. A nil Closed timestamp means the batch is still open.
type Batch struct {
	ID      string
	AdminID int64
	Created time.Time
	Closed  *time.Time
}

// Item represents one encrypted content unit as read back from the database.
// Data stays sealed here; decryption belongs to the rendering pipeline.
type Item struct {
	ID         int64
	Category   string
	Data       string // base64 sealed-box ciphertext
	TemplateID string
}

// ItemRequest represents a submit-item request body. Data must already be
// sealed to the server's public key. A zero BatchID starts a fresh batch;
// KeepOpen suppresses the default close-after-write so callers can spread a
// multi-item import over several requests.
type ItemRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Category   string `json:"category"`
	Data       string `json:"data_encrypted_b64"`
	TemplateID string `json:"template_id"`
	BatchID    string `json:"batch_id,omitempty"`
	KeepOpen   bool   `json:"keep_open,omitempty"`
}

// SubmitResponse reports the batch an item landed in.
type SubmitResponse struct {
	BatchID string `json:"batch_id"`
	OK      bool   `json:"ok"`
}

// RenderedItem is one decrypted, template-rendered item in a fetch response.
type RenderedItem struct {
	Category string `json:"category"`
	Rendered string `json:"rendered"`
}
