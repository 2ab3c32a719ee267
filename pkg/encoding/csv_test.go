package encoding

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"q47-expsums/pkg/expsum"
)

var sample = []expsum.Result{
	{P: 283, Re: 8.644131486219592, Im: -0.19026934410460808, Mag: 8.646225278950284},
	{P: 659, Re: 0.5198678332390153, Im: -1.2772041567382588, Mag: 1.3789535967631816},
	{P: 941, Re: -0.3050108915198478, Im: 1.1430350764393233, Mag: 1.183030358831244},
}

// Test the written layout
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample[:1]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "283,8.644131,-0.190269,8.646225" {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "# sha3-256:") || len(lines[2]) != len("# sha3-256:")+64 {
		t.Errorf("fingerprint = %q", lines[2])
	}
}

func TestRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != len(sample) {
		t.Fatalf("len = %d, want %d", len(got), len(sample))
	}
	for i, want := range sample {
		g := got[i]
		if g.P != want.P ||
			math.Abs(g.Re-want.Re) > 5e-7 ||
			math.Abs(g.Im-want.Im) > 5e-7 ||
			math.Abs(g.Mag-want.Mag) > 5e-7 {
			t.Errorf("row %d: got %+v, want %+v", i, g, want)
		}
	}
}

// A second write of the parsed rows is byte-identical
func TestRoundtripStable(t *testing.T) {
	var first, second bytes.Buffer
	WriteCSV(&first, sample)
	rs, err := ReadCSV(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	WriteCSV(&second, rs)
	if first.String() != second.String() {
		t.Errorf("rewrite differs:\n%s\nvs\n%s", first.String(), second.String())
	}
}

func TestReadCSVChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	WriteCSV(&buf, sample)
	tampered := strings.Replace(buf.String(), "8.644131", "8.744131", 1)
	if _, err := ReadCSV(strings.NewReader(tampered)); !errors.Is(err, ErrChecksum) {
		t.Errorf("ReadCSV error = %v, want ErrChecksum", err)
	}
}

// Files without a fingerprint, with comments and CRLF endings still load
func TestReadCSVPlain(t *testing.T) {
	in := "# generated elsewhere\r\n" +
		"prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude\r\n" +
		"283,8.644131,-0.190269,8.646225\r\n" +
		"\r\n" +
		"659,0.519868,-1.277204,1.378954\r\n"
	rs, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rs) != 2 || rs[0].P != 283 || rs[1].P != 659 || rs[1].Mag != 1.378954 {
		t.Errorf("ReadCSV = %+v", rs)
	}
}

func TestReadCSVMalformed(t *testing.T) {
	cases := []string{
		"prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude\nabc,1,2,3\n",
		"prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude\n283,x,2,3\n",
		"prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude\n283,1,2\n",
	}
	for _, in := range cases {
		if _, err := ReadCSV(strings.NewReader(in)); !errors.Is(err, ErrFormat) {
			t.Errorf("ReadCSV(%q) error = %v, want ErrFormat", in, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "exponential_sums.csv")
	if err := Save(path, sample); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rs) != len(sample) {
		t.Errorf("len = %d, want %d", len(rs), len(sample))
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Load of a missing file returned nil error")
	}
}
