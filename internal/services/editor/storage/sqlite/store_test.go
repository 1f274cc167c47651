package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetFaceRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	saved, err := store.PutFace(context.Background(), "  Rolf  ", facecode.Code(0xffff000000000007), "v1")
	if err != nil {
		t.Fatalf("put face: %v", err)
	}
	if saved.Name != "Rolf" {
		t.Fatalf("name = %q, want Rolf", saved.Name)
	}

	got, err := store.GetFace(context.Background(), "Rolf")
	if err != nil {
		t.Fatalf("get face: %v", err)
	}
	if got.Code != facecode.Code(0xffff000000000007) {
		t.Fatalf("code = %s, want 0xffff000000000007", got.Code)
	}
	if got.Layout != "v1" {
		t.Fatalf("layout = %q, want v1", got.Layout)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestPutFaceReplacesAndKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	first := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	store.now = func() time.Time { return first }
	if _, err := store.PutFace(context.Background(), "Rolf", 1, "v1"); err != nil {
		t.Fatalf("put face: %v", err)
	}
	store.now = func() time.Time { return second }
	got, err := store.PutFace(context.Background(), "Rolf", 2, "v1")
	if err != nil {
		t.Fatalf("replace face: %v", err)
	}
	if got.Code != 2 {
		t.Fatalf("code = %s, want 0x0000000000000002", got.Code)
	}
	if !got.CreatedAt.Equal(first) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, first)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, second)
	}
}

func TestGetFaceNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetFace(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteFace(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.PutFace(context.Background(), "Rolf", 1, "v1"); err != nil {
		t.Fatalf("put face: %v", err)
	}
	if err := store.DeleteFace(context.Background(), "Rolf"); err != nil {
		t.Fatalf("delete face: %v", err)
	}
	if err := store.DeleteFace(context.Background(), "Rolf"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListFacesPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for i, name := range []string{"Matheld", "Borcha", "Ymira", "Alayen", "Klethi"} {
		if _, err := store.PutFace(context.Background(), name, facecode.Code(i), "v1"); err != nil {
			t.Fatalf("put face %s: %v", name, err)
		}
	}

	var names []string
	token := ""
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		page, err := store.ListFaces(context.Background(), 2, token)
		if err != nil {
			t.Fatalf("list faces: %v", err)
		}
		for _, face := range page.Faces {
			names = append(names, face.Name)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if got := strings.Join(names, ","); got != "Alayen,Borcha,Klethi,Matheld,Ymira" {
		t.Fatalf("names = %s", got)
	}
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.PutFace(ctx, " ", 1, "v1"); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("empty name error = %v", err)
	}
	if _, err := store.PutFace(ctx, strings.Repeat("x", storage.MaxNameLength+1), 1, "v1"); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("long name error = %v", err)
	}
	if _, err := store.GetFace(ctx, ""); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("get empty name error = %v", err)
	}
	if err := store.DeleteFace(ctx, strings.Repeat("x", storage.MaxNameLength+1)); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("delete long name error = %v", err)
	}
	if _, err := store.PutFace(ctx, "Rolf", 1, ""); err == nil {
		t.Fatal("expected layout error")
	}
	if _, err := store.ListFaces(ctx, 0, ""); err == nil {
		t.Fatal("expected page size error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.GetFace(cancelled, "Rolf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled get error = %v", err)
	}

	var nilStore *Store
	if _, err := nilStore.GetFace(ctx, "Rolf"); err == nil {
		t.Fatal("expected unconfigured store error")
	}
	if err := nilStore.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "faces.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := first.PutFace(context.Background(), "Rolf", 5, "v1"); err != nil {
		t.Fatalf("put face: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	got, err := second.GetFace(context.Background(), "Rolf")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Code != 5 {
		t.Fatalf("code = %s, want 0x0000000000000005", got.Code)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "faces.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
