// Package storage defines persistence contracts for saved character faces.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
)

// MaxNameLength bounds character names accepted by stores.
const MaxNameLength = 64

var (
	// ErrNotFound indicates a requested face record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidName wraps every rejected character name.
	ErrInvalidName = errors.New("invalid character name")
)

// NormalizeName trims name and checks it is 1 to MaxNameLength characters.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// SavedFace is one character's stored face code.
type SavedFace struct {
	Name      string
	Code      facecode.Code
	Layout    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedFacePage stores one page of faces ordered by name.
type SavedFacePage struct {
	Faces         []SavedFace
	NextPageToken string
}

// FaceStore persists character faces.
type FaceStore interface {
	// PutFace creates or replaces the face stored under name.
	PutFace(ctx context.Context, name string, code facecode.Code, layout string) (SavedFace, error)
	GetFace(ctx context.Context, name string) (SavedFace, error)
	DeleteFace(ctx context.Context, name string) error
	ListFaces(ctx context.Context, pageSize int, pageToken string) (SavedFacePage, error)
}
