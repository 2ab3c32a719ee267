package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"q47-expsums/pkg/config"
	"q47-expsums/pkg/encoding"
)

// setup installs a quiet logger and a small survey writing into a temp dir.
func setup(t *testing.T) (string, *cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()

	ws := t.TempDir()
	cfg = config.DefaultConfig()
	cfg.Survey.MaxPrime = 2000
	cfg.Report.SimulateTrials = 200
	cfg.Output.CSV = filepath.Join(ws, "data", "sums.csv")
	cfg.Output.Figure = filepath.Join(ws, "figures", "fig.png")

	computeMaxPrime, computeWorkers, computeCSV, computeFigure, computeNoFigure = 0, -1, "", "", false
	plotCSV, plotFigure, statsCSV = "", "", ""
	sumDegree, sumDirect = 0, false

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	return ws, cmd, &out
}

func TestComputeCmd(t *testing.T) {
	ws, cmd, out := setup(t)

	require.NoError(t, runCompute(cmd, nil))

	rs, err := encoding.Load(filepath.Join(ws, "data", "sums.csv"))
	require.NoError(t, err)
	require.Len(t, rs, 7)
	assert.Equal(t, uint32(283), rs[0].P)
	assert.InDelta(t, 8.646225, rs[0].Mag, 1e-6)

	_, err = os.Stat(filepath.Join(ws, "figures", "fig.png"))
	assert.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Statistic")
	assert.Contains(t, text, "Mean (excl. p=283)")
	assert.Contains(t, text, "Reference predictions:")
	assert.Contains(t, text, "Simulated RW (45 vectors):")
	assert.Contains(t, text, "[DONE]")
}

func TestComputeCmdFlagOverrides(t *testing.T) {
	ws, cmd, _ := setup(t)
	computeMaxPrime = 1000
	computeWorkers = 0
	computeCSV = filepath.Join(ws, "other.csv")
	computeNoFigure = true

	require.NoError(t, runCompute(cmd, nil))

	rs, err := encoding.Load(computeCSV)
	require.NoError(t, err)
	require.Len(t, rs, 3) // 283, 659, 941

	_, err = os.Stat(cfg.Output.Figure)
	assert.True(t, os.IsNotExist(err))
}

func TestComputeCmdFigureFailureIsNotFatal(t *testing.T) {
	ws, cmd, out := setup(t)
	cfg.Output.Figure = filepath.Join(ws, "fig.bmp")

	require.NoError(t, runCompute(cmd, nil))
	assert.Contains(t, out.String(), "Figure not rendered")

	_, err := os.Stat(cfg.Output.CSV)
	assert.NoError(t, err)
}

func TestComputeCmdInvalidConfig(t *testing.T) {
	_, cmd, _ := setup(t)
	cfg.Survey.Modulus = 0

	assert.Error(t, runCompute(cmd, nil))
}

func TestPlotAndStatsCmd(t *testing.T) {
	ws, cmd, out := setup(t)
	computeNoFigure = true
	require.NoError(t, runCompute(cmd, nil))

	plotFigure = filepath.Join(ws, "replot.svg")
	require.NoError(t, runPlot(cmd, nil))
	_, err := os.Stat(plotFigure)
	assert.NoError(t, err)

	out.Reset()
	require.NoError(t, runStats(cmd, nil))
	assert.Contains(t, out.String(), "Max at p =")
	assert.Contains(t, out.String(), "283")
}

func TestStatsCmdMissingCSV(t *testing.T) {
	ws, cmd, _ := setup(t)
	statsCSV = filepath.Join(ws, "missing.csv")

	assert.Error(t, runStats(cmd, nil))
}

func TestSumCmd(t *testing.T) {
	_, cmd, out := setup(t)

	require.NoError(t, runSum(cmd, []string{"283"}))
	text := out.String()
	assert.Contains(t, text, "Re S_p/sqrt(p) = 8.644131")
	assert.Contains(t, text, "Im S_p/sqrt(p) = -0.190269")
	assert.Contains(t, text, "|S_p|/sqrt(p)  = 8.646225")
	assert.NotContains(t, text, "note:")

	out.Reset()
	sumDirect = true
	require.NoError(t, runSum(cmd, []string{"283"}))
	assert.Contains(t, out.String(), "|S_p|/sqrt(p)  = 8.646225")
}

func TestSumCmdRejects(t *testing.T) {
	_, cmd, out := setup(t)

	assert.Error(t, runSum(cmd, []string{"abc"}))
	assert.Error(t, runSum(cmd, []string{"285"}))
	assert.Error(t, runSum(cmd, []string{"2"}))

	require.NoError(t, runSum(cmd, []string{"5"}))
	assert.Contains(t, out.String(), "note: p is not 1 mod 47")
}
