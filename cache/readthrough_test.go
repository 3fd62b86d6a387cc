package cache

import (
	"context"
	"errors"
	"testing"
)

func TestReadThrough_HitAfterMiss(t *testing.T) {
	rt := NewReadThrough(NewMemoryCache(DefaultPolicy()), nil, ResponsePolicy())
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte(`[{"id":"1"}]`), nil
	}

	input := map[string]any{"endpoint": "/guilds/1/roles"}

	if _, hit, err := rt.Load(ctx, "http", input, load); err != nil || hit {
		t.Fatalf("first Load() hit=%v err=%v, want miss", hit, err)
	}
	val, hit, err := rt.Load(ctx, "http", input, load)
	if err != nil || !hit {
		t.Fatalf("second Load() hit=%v err=%v, want hit", hit, err)
	}
	if string(val) != `[{"id":"1"}]` {
		t.Errorf("cached value = %s", val)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}

	if err := rt.Invalidate(ctx, "http", input); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	_, _, _ = rt.Load(ctx, "http", input, load)
	if calls != 2 {
		t.Errorf("loader calls after invalidate = %d, want 2", calls)
	}
}

func TestReadThrough_ErrorsNotCached(t *testing.T) {
	rt := NewReadThrough(NewMemoryCache(DefaultPolicy()), nil, ResponsePolicy())
	ctx := context.Background()

	loadErr := errors.New("boom")
	calls := 0
	load := func(context.Context) ([]byte, error) {
		calls++
		return nil, loadErr
	}

	for i := 0; i < 2; i++ {
		if _, _, err := rt.Load(ctx, "http", "x", load); err != loadErr {
			t.Fatalf("Load() error = %v, want %v", err, loadErr)
		}
	}
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
}

func TestReadThrough_DisabledPolicy(t *testing.T) {
	rt := NewReadThrough(NewMemoryCache(DefaultPolicy()), nil, NoCachePolicy())
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}
	_, _, _ = rt.Load(ctx, "http", "x", load)
	_, hit, _ := rt.Load(ctx, "http", "x", load)

	if hit || calls != 2 {
		t.Errorf("disabled policy: hit=%v calls=%d, want miss and 2 calls", hit, calls)
	}
}
