package sampling

import (
	"fmt"
	"strconv"

	"fam450/domain/core"
)

// NotAttainableMarker fills table cells where no deviation count reaches the confidence.
const NotAttainableMarker = "n/a"

// Grid enumerates the (n, trd) cells of a table. Rows are sample sizes, columns are rates.
type Grid struct {
	SampleSizes []int     `json:"sample_sizes"`
	Rates       []float64 `json:"rates"`
}

// DefaultGrid is the grid of FAM 450 tables 1 and 2.
func DefaultGrid() Grid {
	return Grid{
		SampleSizes: []int{45, 78, 105, 132, 158},
		Rates:       []float64{0.05, 0.10},
	}
}

// Validate requires non-empty axes with values that would form valid SampleParameters.
func (g Grid) Validate() error {
	if len(g.SampleSizes) == 0 {
		return core.NewInvalidParameterError("grid", "needs at least one sample size")
	}
	if len(g.Rates) == 0 {
		return core.NewInvalidParameterError("grid", "needs at least one tolerable rate")
	}
	for _, n := range g.SampleSizes {
		if n < 1 {
			return core.NewInvalidParameterError("grid sample size", fmt.Sprintf("must be a positive integer, got %d", n))
		}
	}
	for _, trd := range g.Rates {
		if !openUnit(trd) {
			return core.NewInvalidParameterError("grid rate", fmt.Sprintf("must be in (0, 1), got %g", trd))
		}
	}
	return nil
}

// GridCell locates one (n, trd) pair.
type GridCell struct {
	Row int
	Col int
	N   int
	TRD float64
}

// Cells lists every pair in row-major order.
func (g Grid) Cells() []GridCell {
	cells := make([]GridCell, 0, len(g.SampleSizes)*len(g.Rates))
	for i, n := range g.SampleSizes {
		for j, trd := range g.Rates {
			cells = append(cells, GridCell{Row: i, Col: j, N: n, TRD: trd})
		}
	}
	return cells
}

// Cell holds an allowed-deviation count or the not-attainable state.
type Cell struct {
	K                  int     `json:"k"`
	AchievedConfidence float64 `json:"achieved_confidence"`
	Attainable         bool    `json:"attainable"`
}

// CellFromResult converts a successful search.
func CellFromResult(r QuantileResult) Cell {
	return Cell{K: r.K, AchievedConfidence: r.AchievedConfidence, Attainable: true}
}

// String renders k or NotAttainableMarker.
func (c Cell) String() string {
	if !c.Attainable {
		return NotAttainableMarker
	}
	return strconv.Itoa(c.K)
}

// ResultTable is the read-only outcome of one table generation.
type ResultTable struct {
	Direction   Direction `json:"direction"`
	OVR         float64   `json:"ovr"`
	SampleSizes []int     `json:"sample_sizes"`
	Rates       []float64 `json:"rates"`
	Cells       [][]Cell  `json:"cells"` // [row][col]
}

// NewResultTable allocates an empty table shaped like grid. All cells start not attainable.
func NewResultTable(dir Direction, ovr float64, grid Grid) *ResultTable {
	cells := make([][]Cell, len(grid.SampleSizes))
	for i := range cells {
		cells[i] = make([]Cell, len(grid.Rates))
	}
	return &ResultTable{
		Direction:   dir,
		OVR:         ovr,
		SampleSizes: append([]int(nil), grid.SampleSizes...),
		Rates:       append([]float64(nil), grid.Rates...),
		Cells:       cells,
	}
}

// Lookup finds the cell for (n, trd).
func (t *ResultTable) Lookup(n int, trd float64) (Cell, bool) {
	for i, size := range t.SampleSizes {
		if size != n {
			continue
		}
		for j, rate := range t.Rates {
			if rate == trd {
				return t.Cells[i][j], true
			}
		}
	}
	return Cell{}, false
}

// Column returns the cells of column j, top to bottom.
func (t *ResultTable) Column(j int) []Cell {
	col := make([]Cell, len(t.Cells))
	for i := range t.Cells {
		col[i] = t.Cells[i][j]
	}
	return col
}

// ColumnLabels names the rate columns, e.g. "Tolerable Deviation Rate of 5%".
func (t *ResultTable) ColumnLabels() []string {
	labels := make([]string, len(t.Rates))
	for j, trd := range t.Rates {
		labels[j] = "Tolerable Deviation Rate of " + wholePercent(trd)
	}
	return labels
}

// RowLabel heads the sample-size column.
func (t *ResultTable) RowLabel() string {
	return "Sample Size"
}

// Title describes the table, e.g. "Allowed deviations, less than alternative, 10% risk of overreliance".
func (t *ResultTable) Title() string {
	return fmt.Sprintf("Allowed deviations, %s than alternative, %s risk of overreliance",
		t.Direction, wholePercent(t.OVR))
}

// Rows renders the table as strings, header first.
func (t *ResultTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.SampleSizes)+1)
	rows = append(rows, append([]string{t.RowLabel()}, t.ColumnLabels()...))
	for i, n := range t.SampleSizes {
		row := make([]string, 0, len(t.Rates)+1)
		row = append(row, strconv.Itoa(n))
		for _, c := range t.Cells[i] {
			row = append(row, c.String())
		}
		rows = append(rows, row)
	}
	return rows
}
