package session

import (
	"fmt"
	"strings"
)

// SaveDecision is the caller's answer to "crop to the selection before
// saving?".
type SaveDecision int

const (
	// CropThenSave crops to the selection, then writes the result.
	CropThenSave SaveDecision = iota

	// SaveAsIs writes the current image and ignores the selection.
	SaveAsIs

	// Cancel writes nothing.
	Cancel
)

func (d SaveDecision) String() string {
	switch d {
	case CropThenSave:
		return "crop_then_save"
	case SaveAsIs:
		return "save_as_is"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// ParseSaveDecision accepts the String forms, with hyphens or underscores.
// An empty string means SaveAsIs.
func ParseSaveDecision(s string) (SaveDecision, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "crop_then_save", "crop":
		return CropThenSave, nil
	case "save_as_is", "as_is", "":
		return SaveAsIs, nil
	case "cancel":
		return Cancel, nil
	default:
		return 0, fmt.Errorf("unknown save decision %q", s)
	}
}

// NeedsSaveDecision reports whether Save will consult its decision argument,
// which is the case whenever a selection exists.
func (s *Session) NeedsSaveDecision() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.editor.Rect()
	return ok
}
