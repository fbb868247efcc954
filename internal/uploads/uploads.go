package uploads

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"ms-orders/internal/imagecheck"
)

// Store writes validated image artifacts to disk. Filenames are random and
// extensions come from the sniffed content, so nothing client-supplied ever
// reaches the filesystem.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// SaveImage persists the artifact and returns its path relative to the
// uploads root. The caller has already validated the content; the format is
// sniffed again here only to pick the extension.
func (s *Store) SaveImage(data []byte) (string, error) {
	format := imagecheck.Format(data)
	if format == "" {
		return "", fmt.Errorf("artifact is not a recognised image")
	}

	name := fmt.Sprintf("%s.%s", uuid.New().String(), format)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return "/uploads/" + name, nil
}
