package main

import (
	"strings"

	"github.com/PaulSz7/crossword-generator/internal/gen"
	"github.com/PaulSz7/crossword-generator/internal/grid"
)

// render draws the sealed grid for the terminal: letters as themselves,
// clue boxes as '#', blocker cells shaded.
func render(result *gen.Result) string {
	g := result.Grid
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("---+", g.Cols) + "\n")
	for row := 0; row < g.Rows; row++ {
		b.WriteString("|")
		for col := 0; col < g.Cols; col++ {
			cell := g.At(row, col)
			switch cell.Type {
			case grid.Letter:
				b.WriteString(" " + string(rune(cell.Letter)) + " |")
			case grid.ClueBox:
				b.WriteString(" # |")
			case grid.BlockerZone:
				b.WriteString("░░░|")
			default:
				b.WriteString("   |")
			}
		}
		b.WriteString("\n+" + strings.Repeat("---+", g.Cols) + "\n")
	}
	return b.String()
}
