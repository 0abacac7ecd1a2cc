package dict

import (
	"fmt"
	"strings"
)

// Difficulty selects the target tier for candidate scoring. The zero
// value is Medium, the neutral tier.
type Difficulty uint8

const (
	Medium Difficulty = iota
	Easy
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Medium:
		return "MEDIUM"
	case Hard:
		return "HARD"
	}
	return fmt.Sprintf("Difficulty(%d)", uint8(d))
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EASY":
		return Easy, nil
	case "MEDIUM", "":
		return Medium, nil
	case "HARD":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDifficulty(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// tierCenter maps a tier to the difficulty score it is anchored on.
var tierCenter = map[Difficulty]float64{
	Easy:   0.15,
	Medium: 0.45,
	Hard:   0.80,
}

// Entry is one sanitized dictionary word with its ingest metadata.
// DifficultyScore is precomputed offline and treated as opaque here.
type Entry struct {
	Surface         string
	Length          int
	Lemma           string
	Definition      string
	Frequency       float64
	IsCompound      bool
	IsStopword      bool
	DifficultyScore float64
}

// Score ranks the entry for the given tier. Affinity pulls candidates
// toward the tier center; the direction term keeps off-tier words in the
// right relative order (without it, frequent easy words outrank medium
// words under HARD and vice versa).
func (e *Entry) Score(tier Difficulty) float64 {
	base := e.Frequency
	if e.IsCompound {
		base -= 0.15
	}
	if e.IsStopword {
		base -= 0.30
	}
	base = clamp01(base)

	distance := e.DifficultyScore - tierCenter[tier]
	if distance < 0 {
		distance = -distance
	}
	affinity := 1.0 - 3.5*distance
	if affinity < 0 {
		affinity = 0
	}

	var direction float64
	switch tier {
	case Easy:
		direction = 1.0 - e.DifficultyScore
	case Hard:
		direction = e.DifficultyScore
	default:
		direction = 0.5
	}

	return 0.15*base + 0.55*affinity + 0.30*direction
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
