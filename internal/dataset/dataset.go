// Package dataset reads the input collection and writes the batch outcome.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/models"
)

// LoadRequests reads a JSON array of objects and projects titleField of each
// record onto a request. Any unreadable or malformed input is LOAD_FAILED.
func LoadRequests(path, titleField string) ([]models.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewLoadFailedError(path, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewLoadFailedError(path, fmt.Errorf("expected a JSON array of objects: %w", err))
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		v, ok := rec[titleField]
		if !ok {
			return nil, apperrors.NewLoadFailedError(path, fmt.Errorf("record %d has no %q field", i, titleField))
		}
		s, ok := v.(string)
		if !ok {
			return nil, apperrors.NewLoadFailedError(path, fmt.Errorf("record %d: %q is %T, not a string", i, titleField, v))
		}
		texts[i] = s
	}
	return models.NewRequests(texts), nil
}

// PersistError reports a failed write. It keeps the outcome so the caller
// can still save it elsewhere.
type PersistError struct {
	Path    string
	Outcome models.Outcome
	Err     *apperrors.StandardError
}

func (e *PersistError) Error() string { return e.Err.Error() }

func (e *PersistError) Unwrap() error { return e.Err }

// Encode renders the outcome as a JSON array indented by four spaces, with
// HTML and non-ASCII characters written verbatim.
func Encode(outcome models.Outcome) ([]byte, error) {
	if outcome == nil {
		outcome = models.Outcome{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(outcome); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOutcome writes the outcome to path through a temp file in the same
// directory, so readers never see a partial file.
func WriteOutcome(path string, outcome models.Outcome) error {
	if err := writeAtomic(path, outcome); err != nil {
		return &PersistError{
			Path:    path,
			Outcome: outcome,
			Err:     apperrors.NewPersistFailedError(path, err),
		}
	}
	return nil
}

func writeAtomic(path string, outcome models.Outcome) error {
	data, err := Encode(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
