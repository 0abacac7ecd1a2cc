package grid

import "encoding/json"

type gridJSON struct {
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	Blocker *Rect    `json:"blocker,omitempty"`
	Cells   [][]Cell `json:"cells"`
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]Cell, g.Rows)
	for row := 0; row < g.Rows; row++ {
		rows[row] = make([]Cell, g.Cols)
		for col := 0; col < g.Cols; col++ {
			rows[row][col] = g.At(row, col)
		}
	}
	return json.Marshal(gridJSON{
		Rows:    g.Rows,
		Cols:    g.Cols,
		Blocker: g.blocker,
		Cells:   rows,
	})
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Rows, g.Cols = raw.Rows, raw.Cols
	g.blocker = raw.Blocker
	g.cells = make([]Cell, raw.Rows*raw.Cols)
	g.journal = nil
	for row, cells := range raw.Cells {
		for col, cell := range cells {
			g.cells[row*raw.Cols+col] = cell
		}
	}
	return nil
}
