// Package encoding reads and writes survey results as CSV.
//
// The file has a header row and one row per prime:
//
//	prime_p,Re_Sp_over_sqrtp,Im_Sp_over_sqrtp,magnitude
//	283,8.644131,-0.190269,8.646225
//
// Values are written with six decimals. Lines starting with '#' are
// comments; a trailing "# sha3-256:<hex>" comment fingerprints the header
// and rows and is verified on read.
package encoding

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"q47-expsums/pkg/expsum"
	"q47-expsums/pkg/hash"
)

// Header is the first row of a results file.
var Header = []string{"prime_p", "Re_Sp_over_sqrtp", "Im_Sp_over_sqrtp", "magnitude"}

const digestPrefix = "# sha3-256:"

var (
	// ErrChecksum is returned when the fingerprint comment does not match the rows.
	ErrChecksum = errors.New("encoding: checksum mismatch")

	// ErrFormat is returned for rows that cannot be parsed.
	ErrFormat = errors.New("encoding: malformed row")
)

// WriteCSV writes rs to w followed by the fingerprint comment.
func WriteCSV(w io.Writer, rs []expsum.Result) error {
	var body bytes.Buffer
	cw := csv.NewWriter(&body)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rs {
		row := []string{
			strconv.FormatUint(uint64(r.P), 10),
			strconv.FormatFloat(r.Re, 'f', 6, 64),
			strconv.FormatFloat(r.Im, 'f', 6, 64),
			strconv.FormatFloat(r.Mag, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	sum := hash.Sum256(body.Bytes())
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s%s\n", digestPrefix, hex.EncodeToString(sum[:]))
	return err
}

// ReadCSV parses results written by WriteCSV. The header row and comment
// lines are skipped. A fingerprint comment, when present, must match.
func ReadCSV(r io.Reader) ([]expsum.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	var digest string
	for _, line := range strings.SplitAfter(string(data), "\n") {
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if strings.HasPrefix(trimmed, digestPrefix) {
				digest = strings.TrimSpace(strings.TrimPrefix(trimmed, digestPrefix))
			}
			continue
		}
		body.WriteString(trimmed)
		body.WriteByte('\n')
	}

	if digest != "" {
		sum := hash.Sum256(body.Bytes())
		if !strings.EqualFold(digest, hex.EncodeToString(sum[:])) {
			return nil, ErrChecksum
		}
	}

	cr := csv.NewReader(&body)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	rs := make([]expsum.Result, 0, len(records))
	for i, rec := range records {
		if i == 0 && rec[0] == Header[0] {
			continue
		}
		res, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rs = append(rs, res)
	}
	return rs, nil
}

func parseRow(rec []string) (expsum.Result, error) {
	p, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 32)
	if err != nil {
		return expsum.Result{}, fmt.Errorf("%w: prime %q", ErrFormat, rec[0])
	}
	var vals [3]float64
	for j := range vals {
		vals[j], err = strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
		if err != nil {
			return expsum.Result{}, fmt.Errorf("%w: %s %q", ErrFormat, Header[j+1], rec[j+1])
		}
	}
	return expsum.Result{P: uint32(p), Re: vals[0], Im: vals[1], Mag: vals[2]}, nil
}

// Save writes rs to path, creating parent directories.
func Save(path string, rs []expsum.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rs); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads results from path.
func Load(path string) ([]expsum.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rs, nil
}
