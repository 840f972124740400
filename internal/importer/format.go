// Package importer turns pasted JSON or CSV text into movies.
package importer

import (
	"encoding/json"
	"errors"
	"strings"
)

// Format identifies how bulk input is encoded.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "csv"
}

var (
	ErrNoData         = errors.New("No movie data provided")
	ErrNoValidRecords = errors.New("No valid movies found in the data")
)

// DetectFormat classifies text. Input is JSON only when, after trimming, it
// starts with '[' and is well-formed JSON; everything else is CSV.
func DetectFormat(text string) Format {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "[") && json.Valid([]byte(t)) {
		return FormatJSON
	}
	return FormatCSV
}

// Decode detects the format of text and decodes it into records.
func Decode(text string) ([]Record, Format, error) {
	if strings.TrimSpace(text) == "" {
		return nil, FormatCSV, ErrNoData
	}
	f := DetectFormat(text)
	var (
		recs []Record
		err  error
	)
	switch f {
	case FormatJSON:
		recs, err = decodeJSON(text)
	default:
		recs = decodeCSV(text)
	}
	if err != nil {
		return nil, f, err
	}
	if len(recs) == 0 {
		return nil, f, ErrNoValidRecords
	}
	return recs, f, nil
}
