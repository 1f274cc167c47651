// Package sqlite provides a SQLite-backed face storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/warband-face/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/storage"
	"github.com/louisbranch/warband-face/internal/services/editor/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists character faces in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite face store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutFace upserts one face record. CreatedAt survives replacement.
func (s *Store) PutFace(ctx context.Context, name string, code facecode.Code, layout string) (storage.SavedFace, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SavedFace{}, err
	}
	name, err := storage.NormalizeName(name)
	if err != nil {
		return storage.SavedFace{}, err
	}
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return storage.SavedFace{}, fmt.Errorf("layout is required")
	}

	now := toMillis(s.now())
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO character_faces (name, face_code, layout, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   face_code = excluded.face_code,
		   layout = excluded.layout,
		   updated_at = excluded.updated_at`,
		name,
		code.String(),
		layout,
		now,
		now,
	)
	if err != nil {
		return storage.SavedFace{}, fmt.Errorf("put face: %w", err)
	}
	return s.GetFace(ctx, name)
}

// GetFace returns one face by character name.
func (s *Store) GetFace(ctx context.Context, name string) (storage.SavedFace, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SavedFace{}, err
	}
	name, err := storage.NormalizeName(name)
	if err != nil {
		return storage.SavedFace{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, face_code, layout, created_at, updated_at
		   FROM character_faces
		  WHERE name = ?`,
		name,
	)
	face, err := scanFace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SavedFace{}, storage.ErrNotFound
		}
		return storage.SavedFace{}, fmt.Errorf("get face: %w", err)
	}
	return face, nil
}

// DeleteFace removes one face by character name.
func (s *Store) DeleteFace(ctx context.Context, name string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name, err := storage.NormalizeName(name)
	if err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM character_faces WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListFaces returns one page of faces ordered by name.
func (s *Store) ListFaces(ctx context.Context, pageSize int, pageToken string) (storage.SavedFacePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SavedFacePage{}, err
	}
	if pageSize <= 0 {
		return storage.SavedFacePage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, face_code, layout, created_at, updated_at
		   FROM character_faces
		  WHERE name > ?
		  ORDER BY name ASC
		  LIMIT ?`,
		pageToken,
		pageSize+1,
	)
	if err != nil {
		return storage.SavedFacePage{}, fmt.Errorf("list faces: %w", err)
	}
	defer rows.Close()

	page := storage.SavedFacePage{Faces: make([]storage.SavedFace, 0, pageSize)}
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return storage.SavedFacePage{}, fmt.Errorf("list faces: %w", err)
		}
		page.Faces = append(page.Faces, face)
	}
	if err := rows.Err(); err != nil {
		return storage.SavedFacePage{}, fmt.Errorf("list faces: %w", err)
	}
	if len(page.Faces) > pageSize {
		page.NextPageToken = page.Faces[pageSize-1].Name
		page.Faces = page.Faces[:pageSize]
	}
	return page, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFace(row rowScanner) (storage.SavedFace, error) {
	var (
		face      storage.SavedFace
		hexCode   string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&face.Name, &hexCode, &face.Layout, &createdAt, &updatedAt); err != nil {
		return storage.SavedFace{}, err
	}
	code, err := facecode.ParseCode(hexCode)
	if err != nil {
		return storage.SavedFace{}, fmt.Errorf("stored face %q: %w", face.Name, err)
	}
	face.Code = code
	face.CreatedAt = fromMillis(createdAt)
	face.UpdatedAt = fromMillis(updatedAt)
	return face, nil
}

var _ storage.FaceStore = (*Store)(nil)
