package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nebual/ncscreenier/imaging"
)

// NewName generates the timestamp-based filename a capture is saved and
// uploaded under, e.g. "2019_04_07_18-32-11.png".
func NewName(format string, at time.Time) string {
	return at.Format("2006_01_02_15-04-05") + "." + format
}

// Save writes the encoded image into dir under name, never clobbering an
// existing file: on collision the name gets a "_2", "_3"... suffix. Returns
// the path actually written.
func Save(enc imaging.Encoded, dir, name string) (string, error) {
	if len(enc.Bytes) == 0 {
		return "", errors.New("nothing to save: encoded image is empty")
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}

		_, werr := f.Write(enc.Bytes)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		return path, nil
	}
}
