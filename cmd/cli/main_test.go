package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fam450/domain/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"FAM450_OVR", "FAM450_SAMPLE_SIZES", "FAM450_RATES", "FAM450_WORKERS", "PORT"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "ERROR")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDeviationsCommand(t *testing.T) {
	out, err := execute(t, "deviations", "--n", "158", "--trd", "5%", "--direction", "both")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "4 is the maximum number of allowed deviations that an experimenter has enough evidence to determine the internal controls are effective.", lines[0])
	assert.Equal(t, "11 is the minimum number of allowed deviations, after which an experimenter has enough evidence to determine the internal controls are ineffective.", lines[2])
}

func TestDeviationsCommand_DetailedWithObserved(t *testing.T) {
	out, err := execute(t, "deviations", "--n", "158", "--trd", "0.05", "--ovr", "0.1", "--direction", "greater", "--detailed", "--observed", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Null Hypothesis: The true tolerable rate of deviation is at most 5%.")
	assert.Contains(t, out, "Observing 12 deviations in a sample size of 158 (7.59%) rejects the null hypothesis")
}

func TestDeviationsCommand_Errors(t *testing.T) {
	_, err := execute(t, "deviations", "--n", "10", "--trd", "0.01", "--ovr", "0.01")
	assert.True(t, core.IsUnattainable(err), "got %v", err)

	_, err = execute(t, "deviations", "--n", "10", "--trd", "0.05", "--direction", "two-sided")
	assert.True(t, core.IsUnsupportedDirection(err), "got %v", err)

	_, err = execute(t, "deviations", "--n", "0", "--trd", "0.05")
	assert.True(t, core.IsInvalidParameter(err), "got %v", err)

	_, err = execute(t, "deviations", "--n", "10")
	assert.Error(t, err)
}

func TestTableCommand(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "tables.xlsx")
	csvPath := filepath.Join(dir, "tables.csv")

	out, err := execute(t, "table", "--sizes", "25,158", "--rates", "2%,5%", "--xlsx", xlsxPath, "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "| 25 | n/a | n/a |")
	assert.Contains(t, out, "| 158 | 5 | 11 |")

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Less than", "Greater than"}, f.GetSheetList())

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "158,0,4")
}

func TestTableCommand_DefaultGrid(t *testing.T) {
	out, err := execute(t, "table", "--direction", "less")
	require.NoError(t, err)
	assert.Contains(t, out, "| 158 | 4 | 10 |")
	assert.NotContains(t, out, "greater than alternative")
}

func TestReportCommand_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	_, err := execute(t, "report", "--n", "158", "--trd", "5%", "--html", path)
	require.NoError(t, err)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>FAM 450 allowed deviations</title>")
	assert.Contains(t, string(html), "11 is the minimum number")
}
