package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// FileSlot es un adaptador outbound que guarda el hueco en un fichero JSON.
type FileSlot struct {
	filePath string
}

var _ persistence.Slot = (*FileSlot)(nil)

// NewFileSlot es el constructor.
func NewFileSlot(filePath string) *FileSlot {
	return &FileSlot{filePath: filePath}
}

// Read devuelve found=false si el fichero no existe.
func (s *FileSlot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Write escribe en un temporal del mismo directorio y lo renombra,
// de modo que un lector nunca ve un fichero a medias.
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // Se ignora si el Rename() es exitoso

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	return os.Rename(tmpName, s.filePath)
}
