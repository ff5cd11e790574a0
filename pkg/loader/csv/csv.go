package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnreadable is returned when no delimiter/encoding combination yields a
// table with more than one column.
var ErrUnreadable = errors.New("CSV file could not be read, check the delimiter and encoding")

// Delimiters are tried in order; the first one producing more than one
// column wins.
var Delimiters = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseTable reads an uploaded claims CSV. UTF-16 input (detected by its BOM)
// and non UTF-8 input (read as Latin-1) are decoded before parsing.
func ParseTable(content []byte) (*claims.Table, error) {
	text, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var lastErr error
	for _, sep := range Delimiters {
		table, err := readTable(text, sep)
		if err != nil {
			lastErr = err
			continue
		}
		if len(table.Header) > 1 {
			return table, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, lastErr)
	}
	return nil, ErrUnreadable
}

func decode(content []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(content, []byte{0xFF, 0xFE}), bytes.HasPrefix(content, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		return dec.Bytes(content)
	case utf8.Valid(content):
		return bytes.TrimPrefix(content, utf8BOM), nil
	default:
		return charmap.ISO8859_1.NewDecoder().Bytes(content)
	}
}

func readTable(content []byte, sep rune) (*claims.Table, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isEmpty(record) {
			continue
		}
		if header == nil {
			header = record
			continue
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}
		records = append(records, record)
	}

	if header == nil {
		return nil, fmt.Errorf("CSV file is empty or contains no valid data")
	}

	return claims.NewTable(header, records), nil
}

func isEmpty(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
