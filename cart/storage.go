package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/scentlane/storefront/internal/log"
)

// storageVersion guards the persisted cart schema. A file written by a
// different version loads as an empty cart instead of failing.
const storageVersion = 1

type persistedCart struct {
	Version int    `json:"version"`
	Items   []Line `json:"items"`
}

// Storage persists the full cart state between sessions. Implementations
// must be safe to call from the store's mutation path.
type Storage interface {
	Load(c context.Context) ([]Line, error)
	Save(c context.Context, lines []Line) error
}

// FileStorage keeps the cart in one JSON file scoped to the device,
// the stand-in for the browser's local storage.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load(c context.Context) ([]Line, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FileStorage Load").
		Str("path", s.path).
		Logger()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info().Msg("no persisted cart found, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed reading persisted cart with error=%w", err)
	}

	persisted := persistedCart{}
	err = json.Unmarshal(data, &persisted)
	if err != nil {
		return nil, fmt.Errorf("failed unmarshaling persisted cart with error=%w", err)
	}
	if persisted.Version != storageVersion {
		logger.Warn().
			Int("version", persisted.Version).
			Msgf("persisted cart has unknown version=%d, starting empty", persisted.Version)
		return nil, nil
	}
	return persisted.Items, nil
}

func (s *FileStorage) Save(c context.Context, lines []Line) error {
	data, err := json.Marshal(persistedCart{Version: storageVersion, Items: lines})
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the cart file.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return fmt.Errorf("failed creating temp cart file with error=%w", err)
	}
	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed writing cart file with error=%w", err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed closing cart file with error=%w", err)
	}
	err = os.Rename(tmp.Name(), s.path)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed replacing cart file with error=%w", err)
	}
	return nil
}
