package state

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/model"
	"github.com/rs/zerolog/log"
)

const (
	// LeadDelimiter separates columns in the leads file
	LeadDelimiter = ';'

	utf8BOM = "\ufeff"
)

// LeadStore appends leads to a semicolon-delimited CSV file shared by every run.
// Existing rows are never rewritten. Appends made through the same store are
// serialized; separate processes writing the same file are not coordinated.
type LeadStore struct {
	path  string
	mutex sync.Mutex
}

// NewLeadStore creates a store for the file at path
func NewLeadStore(path string) *LeadStore {
	return &LeadStore{path: path}
}

// Path returns the location of the leads file
func (s *LeadStore) Path() string {
	return s.path
}

// AppendLeads writes leads to the end of the file. The header row is written only
// when the file did not exist yet, the byte-order mark only when the file is empty.
func (s *LeadStore) AppendLeads(leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	existed := true
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", s.path, err)
		}
		existed = false
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(utf8BOM); err != nil {
			return fmt.Errorf("failed to write byte-order mark: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	writer.Comma = LeadDelimiter
	writer.UseCRLF = true

	if !existed {
		if err := writer.Write(model.LeadColumns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, lead := range leads {
		if err := writer.Write(lead.Record()); err != nil {
			return fmt.Errorf("failed to write lead for channel %q: %w", lead.Channel, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush leads to %s: %w", s.path, err)
	}

	log.Debug().Str("file", s.path).Int("leads", len(leads)).Bool("new_file", !existed).Msg("Appended leads")
	return nil
}
