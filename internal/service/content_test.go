package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/thingbox/thingbox-go/internal/cache"
	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/repository"
)

type contentFixture struct {
	svc     *ContentService
	store   *repository.Store
	box     *crypto.SealedBox
	adminID int64
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	box, err := crypto.GenerateSealedBox()
	if err != nil {
		t.Fatalf("GenerateSealedBox() unexpected error: %v", err)
	}

	store, err := repository.NewStore(db, box, 16)
	if err != nil {
		t.Fatalf("NewStore() unexpected error: %v", err)
	}

	templates, err := cache.NewTemplateCache(16, func(ctx context.Context, id string) (string, error) {
		return store.GetTemplate(ctx, id, model.TemplateKindItem)
	})
	if err != nil {
		t.Fatalf("NewTemplateCache() unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := store.GrantAdmin(ctx, "twitter", "123"); err != nil {
		t.Fatalf("GrantAdmin() unexpected error: %v", err)
	}
	adminID, ok, err := store.IsAdmin(ctx, "twitter", "123")
	if err != nil || !ok {
		t.Fatalf("IsAdmin() = (%d, %v, %v), want active admin", adminID, ok, err)
	}

	return &contentFixture{
		svc:     NewContentService(store, templates, box, nil),
		store:   store,
		box:     box,
		adminID: adminID,
	}
}

func (f *contentFixture) seal(t *testing.T, plaintext string) string {
	t.Helper()

	ciphertext, err := crypto.Encrypt([]byte(plaintext), f.box.PublicKeyB58())
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}
	return ciphertext
}

func TestSubmitAndFetchRoundTrip(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	if err := f.store.AddTemplate(ctx, "t1", model.TemplateKindItem, "hello {name}, you have {count} things"); err != nil {
		t.Fatalf("AddTemplate() unexpected error: %v", err)
	}

	resp, err := f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter",
		TargetID:   "456",
		Category:   "note",
		Data:       f.seal(t, `{"name":"ada","count":3}`),
		TemplateID: "t1",
	})
	if err != nil {
		t.Fatalf("SubmitItem() unexpected error: %v", err)
	}
	if !resp.OK || resp.BatchID == "" {
		t.Fatalf("SubmitItem() = %+v, want ok with fresh batch id", resp)
	}

	items, err := f.svc.FetchRenderedItems(ctx, "twitter", "456")
	if err != nil {
		t.Fatalf("FetchRenderedItems() unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("FetchRenderedItems() returned %d items, want 1", len(items))
	}
	if items[0].Rendered != "hello ada, you have 3 things" {
		t.Errorf("rendered = %q, want %q", items[0].Rendered, "hello ada, you have 3 things")
	}
	if items[0].Category != "note" {
		t.Errorf("category = %q, want %q", items[0].Category, "note")
	}
}

func TestSubmitRejectsForeignCiphertext(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	otherBox, err := crypto.GenerateSealedBox()
	if err != nil {
		t.Fatalf("GenerateSealedBox() unexpected error: %v", err)
	}
	foreign, err := crypto.Encrypt([]byte(`{"x":1}`), otherBox.PublicKeyB58())
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}

	_, err = f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter",
		TargetID:   "456",
		Data:       foreign,
		TemplateID: "t1",
	})
	if !errors.Is(err, ErrBadCiphertext) {
		t.Fatalf("SubmitItem() error = %v, want ErrBadCiphertext", err)
	}

	items, err := f.svc.FetchRenderedItems(ctx, "twitter", "456")
	if err != nil {
		t.Fatalf("FetchRenderedItems() unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("FetchRenderedItems() returned %d items after rejected write, want 0", len(items))
	}
}

func TestBatchSpansMultipleCalls(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	if err := f.store.AddTemplate(ctx, "t1", model.TemplateKindItem, "{n}"); err != nil {
		t.Fatalf("AddTemplate() unexpected error: %v", err)
	}

	first, err := f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter",
		TargetID:   "456",
		Data:       f.seal(t, `{"n":"one"}`),
		TemplateID: "t1",
		KeepOpen:   true,
	})
	if err != nil {
		t.Fatalf("first SubmitItem() unexpected error: %v", err)
	}

	second, err := f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter",
		TargetID:   "456",
		Data:       f.seal(t, `{"n":"two"}`),
		TemplateID: "t1",
		BatchID:    first.BatchID,
	})
	if err != nil {
		t.Fatalf("second SubmitItem() unexpected error: %v", err)
	}
	if second.BatchID != first.BatchID {
		t.Errorf("second write landed in batch %q, want %q", second.BatchID, first.BatchID)
	}

	// The second call closed the batch by default.
	_, err = f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter",
		TargetID:   "456",
		Data:       f.seal(t, `{"n":"three"}`),
		TemplateID: "t1",
		BatchID:    first.BatchID,
	})
	if !errors.Is(err, ErrNoOpenBatch) {
		t.Errorf("SubmitItem() into closed batch error = %v, want ErrNoOpenBatch", err)
	}

	items, err := f.svc.FetchRenderedItems(ctx, "twitter", "456")
	if err != nil {
		t.Fatalf("FetchRenderedItems() unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("FetchRenderedItems() returned %d items, want 2", len(items))
	}
	// Newest first.
	if items[0].Rendered != "two" || items[1].Rendered != "one" {
		t.Errorf("rendered order = [%q, %q], want [two, one]", items[0].Rendered, items[1].Rendered)
	}
}

func TestFetchPlaceholders(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	if err := f.store.AddTemplate(ctx, "strict", model.TemplateKindItem, "{present} {missing}"); err != nil {
		t.Fatalf("AddTemplate() unexpected error: %v", err)
	}

	// One item references a template that does not exist, one renders with
	// a missing field. Both must surface as placeholders, not failures.
	for _, req := range []model.ItemRequest{
		{TargetType: "twitter", TargetID: "456", Data: f.seal(t, `{"x":1}`), TemplateID: "no-such-template"},
		{TargetType: "twitter", TargetID: "456", Data: f.seal(t, `{"present":"here"}`), TemplateID: "strict"},
	} {
		if _, err := f.svc.SubmitItem(ctx, f.adminID, req); err != nil {
			t.Fatalf("SubmitItem() unexpected error: %v", err)
		}
	}

	items, err := f.svc.FetchRenderedItems(ctx, "twitter", "456")
	if err != nil {
		t.Fatalf("FetchRenderedItems() unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("FetchRenderedItems() returned %d items, want 2", len(items))
	}
	for _, it := range items {
		if it.Rendered != unrenderable {
			t.Errorf("rendered = %q, want placeholder %q", it.Rendered, unrenderable)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	data := f.seal(t, `{"x":1}`)

	tests := []struct {
		name string
		req  model.ItemRequest
		want error
	}{
		{"missing target", model.ItemRequest{Data: data, TemplateID: "t1"}, ErrTargetRequired},
		{"missing data", model.ItemRequest{TargetType: "twitter", TargetID: "456", TemplateID: "t1"}, ErrDataRequired},
		{"missing template", model.ItemRequest{TargetType: "twitter", TargetID: "456", Data: data}, ErrTemplateRequired},
		{"unknown batch", model.ItemRequest{TargetType: "twitter", TargetID: "456", Data: data, TemplateID: "t1", BatchID: "nope"}, ErrNoOpenBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.SubmitItem(ctx, f.adminID, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("SubmitItem() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestArchiveHidesItem(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	if err := f.store.AddTemplate(ctx, "t1", model.TemplateKindItem, "{n}"); err != nil {
		t.Fatalf("AddTemplate() unexpected error: %v", err)
	}
	if _, err := f.svc.SubmitItem(ctx, f.adminID, model.ItemRequest{
		TargetType: "twitter", TargetID: "456", Data: f.seal(t, `{"n":"x"}`), TemplateID: "t1",
	}); err != nil {
		t.Fatalf("SubmitItem() unexpected error: %v", err)
	}

	stored, err := f.store.GetItems(ctx, "twitter", "456")
	if err != nil || len(stored) != 1 {
		t.Fatalf("GetItems() = (%d items, %v), want 1", len(stored), err)
	}

	if err := f.svc.ArchiveItem(ctx, stored[0].ID); err != nil {
		t.Fatalf("ArchiveItem() unexpected error: %v", err)
	}

	items, err := f.svc.FetchRenderedItems(ctx, "twitter", "456")
	if err != nil {
		t.Fatalf("FetchRenderedItems() unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("FetchRenderedItems() returned %d items after archive, want 0", len(items))
	}
}
