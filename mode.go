package mosaic

import (
	"fmt"
	"strings"
)

// SetSelectionMode selects which atlas row (set) a cell uses.
type SetSelectionMode uint8

const (
	// SetFirst always uses row 0.
	SetFirst SetSelectionMode = iota

	// SetRandom picks a row per cell from a hash of the cell position and
	// the noise time, so it re-randomizes at the noise rate.
	SetRandom

	// SetCycle switches all cells to the next row in lockstep, ten times
	// per second.
	SetCycle

	// SetOffsetRow picks the row from the cell's distance to the pointer:
	// the closer the cell, the higher the row.
	SetOffsetRow
)

// String returns the configuration name of the mode.
func (m SetSelectionMode) String() string {
	switch m {
	case SetFirst:
		return "first"
	case SetRandom:
		return "random"
	case SetCycle:
		return "cycle"
	case SetOffsetRow:
		return "offsetRow"
	default:
		return fmt.Sprintf("SetSelectionMode(%d)", m)
	}
}

// needsPointer reports whether the mode reads the pointer position.
func (m SetSelectionMode) needsPointer() bool {
	return m == SetOffsetRow
}

// ParseSetSelectionMode parses a mode name. Matching ignores case, and
// "offset-row" and "offset_row" are accepted for offsetRow.
func ParseSetSelectionMode(s string) (SetSelectionMode, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s))) {
	case "first":
		return SetFirst, nil
	case "random":
		return SetRandom, nil
	case "cycle":
		return SetCycle, nil
	case "offsetrow":
		return SetOffsetRow, nil
	}
	return SetFirst, fmt.Errorf("mosaic: unknown set selection mode %q", s)
}

// Set implements flag.Value.
func (m *SetSelectionMode) Set(s string) error {
	v, err := ParseSetSelectionMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
