package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/thingbox/thingbox-go/internal/backup"
	"github.com/thingbox/thingbox-go/internal/cache"
	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/render"
	"github.com/thingbox/thingbox-go/internal/repository"
)

var (
	ErrTargetRequired   = errors.New("target_type and target_id are required")
	ErrDataRequired     = errors.New("data_encrypted_b64 is required")
	ErrTemplateRequired = errors.New("template_id is required")
	ErrBadCiphertext    = errors.New("ciphertext does not decrypt under the server key")
	ErrNoOpenBatch      = errors.New("no such open batch for this admin")
)

// unrenderable stands in for an item whose template is missing or whose
// rendering failed. One bad item must never take down the whole fetch.
const unrenderable = "[content unavailable]"

// ContentService drives the batch lifecycle on writes and the rendering
// pipeline on reads.
type ContentService struct {
	store     *repository.Store
	templates *cache.TemplateCache
	box       *crypto.SealedBox
	backups   *backup.Scheduler // nil when backups are not configured
}

// NewContentService creates a ContentService. backups may be nil.
func NewContentService(store *repository.Store, templates *cache.TemplateCache, box *crypto.SealedBox, backups *backup.Scheduler) *ContentService {
	return &ContentService{store: store, templates: templates, box: box, backups: backups}
}

// SubmitItem writes one encrypted item for a target on behalf of adminID.
//
// With no batch id the item starts a fresh batch; with one, the batch must
// be open and owned by adminID. The batch closes after the write unless the
// caller keeps it open to spread a multi-item import over several calls.
func (s *ContentService) SubmitItem(ctx context.Context, adminID int64, req model.ItemRequest) (model.SubmitResponse, error) {
	if req.TargetType == "" || req.TargetID == "" {
		return model.SubmitResponse{}, ErrTargetRequired
	}
	if req.Data == "" {
		return model.SubmitResponse{}, ErrDataRequired
	}
	if req.TemplateID == "" {
		return model.SubmitResponse{}, ErrTemplateRequired
	}

	batchID, err := s.store.CreateOrContinueBatch(ctx, adminID, req.BatchID)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenBatch) {
			return model.SubmitResponse{}, ErrNoOpenBatch
		}
		return model.SubmitResponse{}, err
	}

	err = s.store.AddItem(ctx, adminID, batchID, req.TargetType, req.TargetID, req.Category, req.Data, req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCiphertext):
			return model.SubmitResponse{}, ErrBadCiphertext
		case errors.Is(err, repository.ErrNoOpenBatch):
			return model.SubmitResponse{}, ErrNoOpenBatch
		default:
			return model.SubmitResponse{}, err
		}
	}

	if !req.KeepOpen {
		if err := s.store.CloseBatch(ctx, batchID); err != nil {
			return model.SubmitResponse{}, err
		}
		if s.backups != nil {
			s.backups.BatchClosed(ctx)
		}
	}

	return model.SubmitResponse{BatchID: batchID, OK: true}, nil
}

// FetchRenderedItems returns the target's non-archived items, newest first,
// decrypted and rendered through their templates. Items that fail to decrypt
// are omitted; items whose template is missing or whose rendering fails
// appear as a visible placeholder.
func (s *ContentService) FetchRenderedItems(ctx context.Context, targetType, targetID string) ([]model.RenderedItem, error) {
	items, err := s.store.GetItems(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	out := make([]model.RenderedItem, 0, len(items))
	for _, it := range items {
		plaintext, err := s.box.Decrypt(it.Data)
		if err != nil {
			slog.Warn("skipping item: decrypt failed", "item_id", it.ID)
			continue
		}

		out = append(out, model.RenderedItem{
			Category: it.Category,
			Rendered: s.renderItem(ctx, it, plaintext),
		})
	}
	return out, nil
}

func (s *ContentService) renderItem(ctx context.Context, it model.Item, plaintext []byte) string {
	var data map[string]any
	if err := json.Unmarshal(plaintext, &data); err != nil {
		slog.Warn("item payload is not a JSON object", "item_id", it.ID, "error", err)
		return unrenderable
	}

	body, err := s.templates.Get(ctx, it.TemplateID)
	if err != nil {
		slog.Warn("template lookup failed", "item_id", it.ID, "template_id", it.TemplateID, "error", err)
		return unrenderable
	}

	rendered, err := render.Render(body, data)
	if err != nil {
		slog.Warn("rendering failed", "item_id", it.ID, "template_id", it.TemplateID, "error", err)
		return unrenderable
	}
	return rendered
}

// ArchiveItem retires an item from all future reads.
func (s *ContentService) ArchiveItem(ctx context.Context, id int64) error {
	return s.store.ArchiveItem(ctx, id)
}
