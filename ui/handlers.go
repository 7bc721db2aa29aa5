package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fam450/adapters/excel"
	"fam450/adapters/report"
	"fam450/domain/core"
	"fam450/domain/sampling"
	"fam450/internal/config"
	"fam450/internal/errors"
	"fam450/ports"
)

// deviationsResponse answers /api/deviations
type deviationsResponse struct {
	N                  int                `json:"n"`
	TRD                float64            `json:"trd"`
	OVR                float64            `json:"ovr"`
	Direction          sampling.Direction `json:"direction"`
	K                  int                `json:"k"`
	AchievedConfidence float64            `json:"achieved_confidence"`
	ObservedRate       float64            `json:"observed_rate"`
	Simple             string             `json:"simple"`
	Detailed           string             `json:"detailed"`
	Decision           *sampling.Decision `json:"decision,omitempty"`
}

// tableResponse answers /api/tables/{direction}; unattainable cells hold the marker string
type tableResponse struct {
	Direction sampling.Direction `json:"direction"`
	OVR       float64            `json:"ovr"`
	Title     string             `json:"title"`
	Columns   []string           `json:"columns"`
	Rows      []tableRowResponse `json:"rows"`
}

type tableRowResponse struct {
	SampleSize int           `json:"sample_size"`
	Cells      []interface{} `json:"cells"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeviations runs one search: ?n=158&trd=0.05&ovr=0.1&direction=less[&observed=3]
func (a *App) handleDeviations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		a.writeError(w, core.NewInvalidParameterError("n", fmt.Sprintf("must be an integer, got %q", q.Get("n"))))
		return
	}
	trd, err := rateParam(q.Get("trd"), "trd", 0)
	if err != nil {
		a.writeError(w, err)
		return
	}
	ovr, err := rateParam(q.Get("ovr"), "ovr", a.config.OVR)
	if err != nil {
		a.writeError(w, err)
		return
	}
	dir, err := sampling.ParseDirection(q.Get("direction"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	audit, err := sampling.NewAuditTest(n, trd, ovr)
	if err != nil {
		a.writeError(w, err)
		return
	}
	res, err := audit.Search(dir)
	if err != nil {
		a.writeError(w, err)
		return
	}

	resp := deviationsResponse{
		N:                  n,
		TRD:                trd,
		OVR:                ovr,
		Direction:          dir,
		K:                  res.K,
		AchievedConfidence: res.AchievedConfidence,
		ObservedRate:       res.ObservedRate(),
		Simple:             sampling.SimpleResults(res),
		Detailed:           sampling.DetailedResults(res),
	}

	if raw := q.Get("observed"); raw != "" {
		observed, err := strconv.Atoi(raw)
		if err != nil {
			a.writeError(w, core.NewInvalidParameterError("observed", fmt.Sprintf("must be an integer, got %q", raw)))
			return
		}
		decision, err := sampling.Interpret(res, observed)
		if err != nil {
			a.writeError(w, err)
			return
		}
		resp.Decision = &decision
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTable generates one table: ?ovr=0.1&sizes=45,78&rates=5%,10%&format=json|xlsx|csv
func (a *App) handleTable(w http.ResponseWriter, r *http.Request) {
	dir, err := sampling.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	q := r.URL.Query()
	ovr, err := rateParam(q.Get("ovr"), "ovr", a.config.OVR)
	if err != nil {
		a.writeError(w, err)
		return
	}
	grid, err := a.gridParams(q.Get("sizes"), q.Get("rates"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	table, err := a.tables.Generate(r.Context(), dir, ovr, grid)
	if err != nil {
		a.writeError(w, err)
		return
	}

	switch format := q.Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, newTableResponse(table))
	case "xlsx":
		a.writeExport(w, excel.NewTableWriter(), "fam450-"+string(dir), table)
	case "csv":
		a.writeExport(w, excel.NewCSVWriter(), "fam450-"+string(dir), table)
	default:
		a.writeError(w, errors.InvalidInput(fmt.Sprintf("unsupported format %q", format)))
	}
}

// handleReport renders both tables, plus one search when n and trd are given
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ovr, err := rateParam(q.Get("ovr"), "ovr", a.config.OVR)
	if err != nil {
		a.writeError(w, err)
		return
	}

	tables, err := a.tables.Tables(r.Context(), ovr, a.config.Grid)
	if err != nil {
		a.writeError(w, err)
		return
	}
	doc := report.Document{Tables: []*sampling.ResultTable{tables.Less, tables.Greater}}

	if q.Get("n") != "" {
		n, err := strconv.Atoi(q.Get("n"))
		if err != nil {
			a.writeError(w, core.NewInvalidParameterError("n", fmt.Sprintf("must be an integer, got %q", q.Get("n"))))
			return
		}
		trd, err := rateParam(q.Get("trd"), "trd", 0)
		if err != nil {
			a.writeError(w, err)
			return
		}
		audit, err := sampling.NewAuditTest(n, trd, ovr)
		if err != nil {
			a.writeError(w, err)
			return
		}
		for _, dir := range sampling.Directions() {
			res, err := audit.Search(dir)
			if core.IsUnattainable(err) {
				continue
			}
			if err != nil {
				a.writeError(w, err)
				return
			}
			doc.Results = append(doc.Results, res)
		}
	}

	renderer := report.NewHTMLRenderer()
	w.Header().Set("Content-Type", renderer.ContentType())
	if err := renderer.Write(w, doc); err != nil {
		a.logger.Error("report write failed: %v", err)
	}
}

func (a *App) gridParams(sizes, rates string) (sampling.Grid, error) {
	n, err := config.ParseSampleSizes(sizes, a.config.Grid.SampleSizes)
	if err != nil {
		return sampling.Grid{}, core.NewInvalidParameterError("sizes", err.Error())
	}
	trd, err := config.ParseRates(rates, a.config.Grid.Rates)
	if err != nil {
		return sampling.Grid{}, core.NewInvalidParameterError("rates", err.Error())
	}
	return sampling.Grid{SampleSizes: n, Rates: trd}, nil
}

func (a *App) writeExport(w http.ResponseWriter, exporter ports.TableExporter, name string, table *sampling.ResultTable) {
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+exporter.Extension()))
	if err := exporter.Export(w, table); err != nil {
		a.logger.Error("%v", errors.ExportFailed(exporter.Extension(), err))
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	} else {
		a.logger.Debug("request rejected (%s): %v", code, err)
	}
	writeJSON(w, status, map[string]string{"code": code, "error": err.Error()})
}

func newTableResponse(table *sampling.ResultTable) tableResponse {
	resp := tableResponse{
		Direction: table.Direction,
		OVR:       table.OVR,
		Title:     table.Title(),
		Columns:   table.ColumnLabels(),
		Rows:      make([]tableRowResponse, len(table.SampleSizes)),
	}
	for i, n := range table.SampleSizes {
		cells := make([]interface{}, len(table.Cells[i]))
		for j, c := range table.Cells[i] {
			if c.Attainable {
				cells[j] = c.K
			} else {
				cells[j] = sampling.NotAttainableMarker
			}
		}
		resp.Rows[i] = tableRowResponse{SampleSize: n, Cells: cells}
	}
	return resp
}

// rateParam parses "0.05" or "5%"; an empty value yields def, or an error when def is zero.
func rateParam(raw, name string, def float64) (float64, error) {
	if raw == "" {
		if def == 0 {
			return 0, core.NewInvalidParameterError(name, "is required")
		}
		return def, nil
	}
	v, err := config.ParseRate(raw)
	if err != nil {
		return 0, core.NewInvalidParameterError(name, err.Error())
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
