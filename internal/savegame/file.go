package savegame

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rocketscienceinc/kwazam-backend/internal/apperror"
	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
)

const DefaultFileName = "savegame.txt"

// SaveFile - writes the game to path through a temporary file, so a failed save never
// leaves a truncated record behind.
func SaveFile(path string, game *entity.Game) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // the file is gone after a successful rename

	if err = Encode(tmp, game, time.Now()); err != nil {
		tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}

	return nil
}

// LoadFile - reads a game from path.
func LoadFile(path string) (*entity.Game, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no save file at %s", apperror.ErrIO, path)
		}
		return nil, fmt.Errorf("%w: %w", apperror.ErrIO, err)
	}
	defer file.Close()

	return Decode(file)
}
