package cache

import (
	"context"
	"errors"
	"testing"
)

func TestTemplateCacheLoadsOnce(t *testing.T) {
	loads := 0
	c, err := NewTemplateCache(8, func(ctx context.Context, id string) (string, error) {
		loads++
		return "body of " + id, nil
	})
	if err != nil {
		t.Fatalf("NewTemplateCache() unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		body, err := c.Get(context.Background(), "t1")
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}
		if body != "body of t1" {
			t.Errorf("Get() = %q, want %q", body, "body of t1")
		}
	}

	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
}

func TestTemplateCacheLoaderErrorNotCached(t *testing.T) {
	wantErr := errors.New("template not found")
	fail := true
	c, err := NewTemplateCache(8, func(ctx context.Context, id string) (string, error) {
		if fail {
			return "", wantErr
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("NewTemplateCache() unexpected error: %v", err)
	}

	if _, err := c.Get(context.Background(), "t1"); !errors.Is(err, wantErr) {
		t.Fatalf("Get() error = %v, want %v", err, wantErr)
	}

	// Once the template exists the cache must pick it up: failures are
	// never negatively cached.
	fail = false
	body, err := c.Get(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if body != "recovered" {
		t.Errorf("Get() = %q, want %q", body, "recovered")
	}
}

func TestTemplateCacheClear(t *testing.T) {
	loads := 0
	c, err := NewTemplateCache(8, func(ctx context.Context, id string) (string, error) {
		loads++
		return "body", nil
	})
	if err != nil {
		t.Fatalf("NewTemplateCache() unexpected error: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := c.Get(context.Background(), id); err != nil {
			t.Fatalf("Get(%q) unexpected error: %v", id, err)
		}
	}

	if n := c.Clear(); n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if n := c.Clear(); n != 0 {
		t.Errorf("second Clear() = %d, want 0", n)
	}

	if _, err := c.Get(context.Background(), "a"); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if loads != 4 {
		t.Errorf("loader called %d times, want 4 (reload after clear)", loads)
	}
}

func TestTemplateCacheCapacityBound(t *testing.T) {
	c, err := NewTemplateCache(2, func(ctx context.Context, id string) (string, error) {
		return "body of " + id, nil
	})
	if err != nil {
		t.Fatalf("NewTemplateCache() unexpected error: %v", err)
	}

	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := c.Get(context.Background(), id); err != nil {
			t.Fatalf("Get(%q) unexpected error: %v", id, err)
		}
	}

	if n := c.Clear(); n > 2 {
		t.Errorf("cache held %d entries, want <= 2", n)
	}
}
