package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fam450/domain/core"
	"fam450/domain/sampling"
	"fam450/internal"
)

// FAM450OVR is the risk of overreliance used by FAM 450 tables 1 and 2.
const FAM450OVR = 0.10

// TableService generates allowed-deviation tables over a grid of (n, trd) cells
type TableService struct {
	workers int
	logger  *internal.Logger
}

// TablePair holds one table per direction over the same grid
type TablePair struct {
	Less    *sampling.ResultTable `json:"less"`
	Greater *sampling.ResultTable `json:"greater"`
}

// NewTableService creates a table service computing at most workers cells at once
func NewTableService(workers int, logger *internal.Logger) *TableService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TableService{
		workers: workers,
		logger:  logger.Named("tables"),
	}
}

// LessThanTable generates the effectiveness table (H1: rate < trd)
func (s *TableService) LessThanTable(ctx context.Context, ovr float64, grid sampling.Grid) (*sampling.ResultTable, error) {
	return s.Generate(ctx, sampling.Less, ovr, grid)
}

// GreaterThanTable generates the ineffectiveness table (H1: rate > trd)
func (s *TableService) GreaterThanTable(ctx context.Context, ovr float64, grid sampling.Grid) (*sampling.ResultTable, error) {
	return s.Generate(ctx, sampling.Greater, ovr, grid)
}

// FAM450Tables reproduces FAM 450 tables 1 and 2
func (s *TableService) FAM450Tables(ctx context.Context) (*TablePair, error) {
	return s.Tables(ctx, FAM450OVR, sampling.DefaultGrid())
}

// Tables generates both directions over the same grid
func (s *TableService) Tables(ctx context.Context, ovr float64, grid sampling.Grid) (*TablePair, error) {
	less, err := s.LessThanTable(ctx, ovr, grid)
	if err != nil {
		return nil, err
	}
	greater, err := s.GreaterThanTable(ctx, ovr, grid)
	if err != nil {
		return nil, err
	}
	return &TablePair{Less: less, Greater: greater}, nil
}

// Generate fills one table. Each cell depends only on its own (n, trd, ovr, dir); an
// unattainable cell is marked and the remaining cells are still computed. Any other
// failure aborts the table.
func (s *TableService) Generate(ctx context.Context, dir sampling.Direction, ovr float64, grid sampling.Grid) (*sampling.ResultTable, error) {
	startTime := time.Now()

	if err := dir.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if _, err := sampling.NewSampleParameters(grid.SampleSizes[0], grid.Rates[0], ovr); err != nil {
		return nil, err
	}

	table := sampling.NewResultTable(dir, ovr, grid)
	cells := grid.Cells()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, cell := range cells {
		cell := cell
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			computed, err := s.computeCell(cell, dir, ovr)
			if err != nil {
				return err
			}
			// Distinct (row, col) per goroutine.
			table.Cells[cell.Row][cell.Col] = computed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("%s table generation failed: %v", dir, err)
		return nil, err
	}

	s.logger.Info("generated %s table: %d cells at ovr=%g in %s", dir, len(cells), ovr, time.Since(startTime))
	return table, nil
}

func (s *TableService) computeCell(cell sampling.GridCell, dir sampling.Direction, ovr float64) (sampling.Cell, error) {
	params, err := sampling.NewSampleParameters(cell.N, cell.TRD, ovr)
	if err != nil {
		return sampling.Cell{}, fmt.Errorf("cell n=%d trd=%g: %w", cell.N, cell.TRD, err)
	}

	result, err := sampling.QuantileSearch(params, dir)
	switch {
	case core.IsUnattainable(err):
		s.logger.Debug("%s cell n=%d trd=%g not attainable at ovr=%g", dir, cell.N, cell.TRD, ovr)
		return sampling.Cell{Attainable: false}, nil
	case err != nil:
		return sampling.Cell{}, fmt.Errorf("cell n=%d trd=%g: %w", cell.N, cell.TRD, err)
	}

	s.logger.Trace("%s cell n=%d trd=%g -> k=%d (confidence %.4f)", dir, cell.N, cell.TRD, result.K, result.AchievedConfidence)
	return sampling.CellFromResult(result), nil
}
