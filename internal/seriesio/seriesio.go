// Package seriesio reads time-series and writes matrix profiles for the mpx
// command.
package seriesio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/sugawarayuuta/sonnet"

	"github.com/pinkhop/matrixprofile-go"
)

var ErrNoValues = errors.New("input holds no values")

// ReadSeries parses a time-series from r. Values are separated by whitespace
// or commas, and anything after a '#' on a line is ignored. "nan", "inf" and
// empty fields between commas are read as missing values (NaN).
func ReadSeries(r io.Reader) ([]float64, error) {
	var series []float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		for _, field := range splitFields(line) {
			if field == "" {
				series = append(series, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if math.IsInf(v, 0) {
				v = math.NaN()
			}
			series = append(series, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, ErrNoValues
	}
	return series, nil
}

// splitFields splits a line on commas, and splits each comma-separated part
// on whitespace. A comma-separated part holding only whitespace yields one
// empty field.
func splitFields(line string) []string {
	var fields []string
	for _, part := range strings.Split(line, ",") {
		words := strings.FieldsFunc(part, unicode.IsSpace)
		if len(words) == 0 {
			if strings.Contains(line, ",") {
				fields = append(fields, "")
			}
			continue
		}
		fields = append(fields, words...)
	}
	return fields
}

// ReadSeriesFile reads a time-series from the named file, or from standard
// input when path is "-".
func ReadSeriesFile(path string) ([]float64, error) {
	if path == "-" {
		return ReadSeries(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// ProfileRecord is the JSON form of a matrix profile snapshot. Unmatched
// subsequences have a null distance.
type ProfileRecord struct {
	M         int        `json:"m"`
	Round     int        `json:"round,omitempty"`
	Rounds    int        `json:"rounds,omitempty"`
	Distances []*float64 `json:"distances"`
	Indices   []int      `json:"indices"`
}

// NewProfileRecord returns the JSON form of profile.
func NewProfileRecord(m int, profile matrixprofile.Profile) ProfileRecord {
	distances := make([]*float64, len(profile.Distances))
	for i := range profile.Distances {
		if !math.IsInf(profile.Distances[i], 0) && !math.IsNaN(profile.Distances[i]) {
			distances[i] = &profile.Distances[i]
		}
	}
	return ProfileRecord{
		M:         m,
		Distances: distances,
		Indices:   profile.Indices,
	}
}

// Profile converts the record back to a matrix profile.
func (r ProfileRecord) Profile() matrixprofile.Profile {
	p := matrixprofile.Profile{
		Distances: make([]float64, len(r.Distances)),
		Indices:   r.Indices,
	}
	for i, d := range r.Distances {
		if d == nil {
			p.Distances[i] = math.Inf(1)
			continue
		}
		p.Distances[i] = *d
	}
	return p
}

// WriteRecord writes record to w as a single line of JSON.
func WriteRecord(w io.Writer, record ProfileRecord) error {
	payload, err := sonnet.Marshal(record)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = w.Write(payload)
	return err
}

// ReadRecord decodes a single JSON profile record.
func ReadRecord(data []byte) (ProfileRecord, error) {
	var record ProfileRecord
	if err := sonnet.Unmarshal(data, &record); err != nil {
		return ProfileRecord{}, err
	}
	if len(record.Distances) != len(record.Indices) {
		return ProfileRecord{}, fmt.Errorf("profile record has %d distances and %d indices",
			len(record.Distances), len(record.Indices))
	}
	return record, nil
}
