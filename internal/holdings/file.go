package holdings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/logger"
)

// fileSource reads holding records from a JSON file on disk.
type fileSource struct {
	path      string
	secondary Source
}

// NewFileSource builds a file-backed source with an optional secondary
// fallback (e.g. an HTTP source) consulted when the file cannot be read.
func NewFileSource(path string, secondary Source) Source {
	return &fileSource{path: path, secondary: secondary}
}

func (f *fileSource) Secondary() Source {
	return f.secondary
}

// Load parses the file and keeps only records belonging to underlying:
// the equity itself, or option contracts written on it. Other records are
// skipped silently, matching the collection constructor's own rule.
func (f *fileSource) Load(underlying string) ([]collection.Holding, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("holdings: reading %s: %w", f.path, err)
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("holdings: parsing %s: %w", f.path, err)
	}
	kept := records[:0]
	for _, r := range records {
		if r.Symbol == underlying || r.Underlying == underlying {
			kept = append(kept, r)
		}
	}
	logger.Debugf("holdings: %s: %d records, %d on %s", f.path, len(records), len(kept), underlying)
	return ToHoldings(kept)
}
