package grid

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CellType enumerates the four states a grid cell moves through.
type CellType uint8

const (
	// EmptyPlayable is the initial undecided state; layout turns it into
	// a letter or a clue box.
	EmptyPlayable CellType = iota
	// Letter holds exactly one A-Z letter, possibly shared by an across
	// and a down word.
	Letter
	// ClueBox is a structural barrier hosting one or more clues.
	ClueBox
	// BlockerZone is an inert non-playable region.
	BlockerZone
)

var cellTypeNames = map[CellType]string{
	EmptyPlayable: "EMPTY_PLAYABLE",
	Letter:        "LETTER",
	ClueBox:       "CLUE_BOX",
	BlockerZone:   "BLOCKER_ZONE",
}

func (t CellType) String() string {
	if name, ok := cellTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CellType(%d)", uint8(t))
}

func (t CellType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CellType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for typ, n := range cellTypeNames {
		if n == name {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown cell type %q", name)
}

// Cell is a single grid position. Letter is 0 unless Type == Letter.
type Cell struct {
	Type   CellType
	Letter byte
}

// Playable reports whether the cell can still carry letters.
func (c Cell) Playable() bool {
	return c.Type == EmptyPlayable || c.Type == Letter
}

// blocked reports whether the cell terminates a run.
func (c Cell) blocked() bool {
	return c.Type == ClueBox || c.Type == BlockerZone
}

func (c Cell) MarshalJSON() ([]byte, error) {
	letter := ""
	if c.Letter != 0 {
		letter = string(rune(c.Letter))
	}
	return json.Marshal(struct {
		Type   CellType `json:"type"`
		Letter string   `json:"letter,omitempty"`
	}{c.Type, letter})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   CellType `json:"type"`
		Letter string   `json:"letter"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Type = raw.Type
	c.Letter = 0
	if raw.Letter != "" {
		letter := strings.ToUpper(raw.Letter)[0]
		if letter < 'A' || letter > 'Z' {
			return fmt.Errorf("invalid cell letter %q", raw.Letter)
		}
		c.Letter = letter
	}
	return nil
}

// Coord addresses a cell by row and column. Slots reference cells by
// coordinate only, never by pointer.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// orthogonalSteps are the four cardinal neighbor offsets.
var orthogonalSteps = [4]Coord{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
