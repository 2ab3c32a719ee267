package survey

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"q47-expsums/pkg/expsum"
	"q47-expsums/pkg/poly"
	"q47-expsums/pkg/primes"
	"q47-expsums/pkg/stats"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func smallConfig(workers int) Config {
	return Config{
		Query:   primes.Query{Limit: 2000, Modulus: 47, Residue: 1},
		Degree:  poly.Degree47,
		Workers: workers,
	}
}

func TestRunSmall(t *testing.T) {
	ds, err := Run(context.Background(), smallConfig(1), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := ds.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []uint32{283, 659, 941, 1129, 1223, 1693, 1787}
	if diff := cmp.Diff(want, ds.Primes); diff != "" {
		t.Errorf("primes (-want +got):\n%s", diff)
	}
	if len(ds.Mag) != len(want) {
		t.Errorf("len(Mag) = %d, want %d", len(ds.Mag), len(want))
	}
	if math.Abs(ds.Mag[0]-8.646225278950284) > 1e-9 {
		t.Errorf("|x_283| = %v", ds.Mag[0])
	}
}

// The worker pool keeps results in prime order
func TestRunParallelMatchesSequential(t *testing.T) {
	seq, err := Run(context.Background(), smallConfig(1), nil)
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	par, err := Run(context.Background(), smallConfig(4), nil)
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel result differs (-seq +par):\n%s", diff)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smallConfig(2), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestRunInvalidQuery(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Query.Modulus = 0
	if _, err := Run(context.Background(), cfg, nil); !errors.Is(err, primes.ErrQuery) {
		t.Errorf("Run error = %v, want ErrQuery", err)
	}
}

func TestRunNoPrimes(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Query.Limit = 283
	if _, err := Run(context.Background(), cfg, nil); err == nil {
		t.Error("Run over an empty class returned nil error")
	}
}

func TestRunLogsProgress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := smallConfig(1)
	cfg.ProgressEvery = 3

	if _, err := Run(context.Background(), cfg, zap.New(core)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := logs.FilterMessage("Effective primes").Len(); n != 1 {
		t.Errorf("Effective primes logged %d times, want 1", n)
	}
	// first prime, then 3/7 and 6/7
	if n := logs.FilterMessage("Computed").Len(); n != 3 {
		t.Errorf("progress lines = %d, want 3", n)
	}
}

// Full survey below 50000
func TestRunFullSurvey(t *testing.T) {
	if testing.Short() {
		t.Skip("full survey")
	}
	cfg := Config{
		Query:  primes.Query{Limit: 50000, Modulus: 47, Residue: 1},
		Degree: poly.Degree47,
	}
	ds, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ds.Len() != 111 || len(ds.Mag) != 111 {
		t.Fatalf("Len = %d, len(Mag) = %d, want 111", ds.Len(), len(ds.Mag))
	}

	s := stats.Summarize(ds.Primes, ds.Mag)
	if math.Abs(s.Mean-1.5025959398559356) > 1e-9 {
		t.Errorf("Mean = %v, want 1.502596", s.Mean)
	}
	if s.MaxAt != 283 || math.Abs(s.Max-8.646225278950284) > 1e-9 {
		t.Errorf("Max = %v at %d, want 8.646225 at 283", s.Max, s.MaxAt)
	}
	if s.MinAt != 47659 || math.Abs(s.Min-0.021441097893712496) > 1e-9 {
		t.Errorf("Min = %v at %d, want 0.021441 at 47659", s.Min, s.MinAt)
	}

	ps, ms := stats.Exclude(ds.Primes, ds.Mag, 283)
	ex := stats.Summarize(ps, ms)
	if math.Abs(ex.Mean-1.4376538549550777) > 1e-9 || ex.MaxAt != 6581 {
		t.Errorf("excluding 283: Mean = %v, MaxAt = %d", ex.Mean, ex.MaxAt)
	}

	bound := expsum.WeilBound(poly.Degree47)
	for i, m := range ds.Mag {
		if m > bound {
			t.Errorf("|x_%d| = %v exceeds Weil bound", ds.Primes[i], m)
		}
	}
}

func TestDatasetRoundtrip(t *testing.T) {
	rs := []expsum.Result{
		{P: 283, Re: 8.6, Im: -0.2, Mag: 8.6},
		{P: 659, Re: 0.5, Im: -1.3, Mag: 1.4},
	}
	ds := FromResults(rs)
	if diff := cmp.Diff(rs, ds.Results()); diff != "" {
		t.Errorf("roundtrip (-want +got):\n%s", diff)
	}
	if ds.Index(659) != 1 || ds.Index(7) != -1 {
		t.Errorf("Index(659) = %d, Index(7) = %d", ds.Index(659), ds.Index(7))
	}
}

func TestDatasetValidate(t *testing.T) {
	ds := &Dataset{Primes: []uint32{283}, Re: []float64{1}, Im: []float64{1}}
	if err := ds.Validate(); err == nil {
		t.Error("Validate accepted mismatched lengths")
	}
	empty := FromResults(nil)
	if diff := cmp.Diff(&Dataset{}, empty, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("empty dataset (-want +got):\n%s", diff)
	}
}
