// Package tabular decodes uploaded files into flat header-keyed rows.
// The parsers downstream depend only on the []Row shape, never on the
// source format.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

type Kind string

const (
	KindXLSX Kind = "xlsx"
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

// Row is one spreadsheet/CSV/JSON record keyed by its normalized header.
type Row map[string]any

var (
	// ErrUnreadable marks an I/O failure: the bytes never arrived.
	ErrUnreadable = errors.New("file unreadable")
	// ErrMalformed marks a decode failure: the bytes arrived but are not
	// a valid file of the requested kind.
	ErrMalformed = errors.New("file malformed")
)

// Read drains r fully, then decodes by kind. All-or-nothing: there are
// no partial results and a malformed payload fails the whole read.
func Read(r io.Reader, kind Kind) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	switch kind {
	case KindXLSX:
		return readXLSX(data)
	case KindCSV:
		return readCSV(data)
	case KindJSON:
		return readJSON(data)
	case KindHTML:
		return readHTML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrMalformed, kind)
	}
}

func ReadFile(path string, kind Kind) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()
	return Read(f, kind)
}

func readXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) == 0 {
		return []Row{}, nil
	}

	headers := normalizeHeaders(rows[0])
	return rowsFromCells(headers, rows[1:]), nil
}

func readCSV(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(all) == 0 {
		return []Row{}, nil
	}

	headers := normalizeHeaders(all[0])
	return rowsFromCells(headers, all[1:]), nil
}

func readJSON(data []byte) ([]Row, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]Row, 0, len(raw))
	for _, record := range raw {
		row := Row{}
		for key, value := range record {
			row[normalizeHeader(key)] = value
		}
		out = append(out, row)
	}
	return out, nil
}

func readHTML(data []byte) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table element", ErrMalformed)
	}

	trs := table.Find("tr")
	if trs.Length() == 0 {
		return []Row{}, nil
	}

	var headers []string
	trs.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, cell.Text())
	})
	headers = normalizeHeaders(headers)

	var cellRows [][]string
	trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		cellRows = append(cellRows, cells)
	})

	return rowsFromCells(headers, cellRows), nil
}

// sniffDelimiter guesses the CSV separator from the first chunk;
// Brazilian exports commonly use ';'.
func sniffDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	first := string(sample)

	switch {
	case strings.Contains(first, "\t") && !strings.Contains(first, ","):
		return '\t'
	case strings.Contains(first, ";") && !strings.Contains(first, ","):
		return ';'
	default:
		return ','
	}
}

func rowsFromCells(headers []string, cellRows [][]string) []Row {
	out := make([]Row, 0, len(cellRows))
	for _, cells := range cellRows {
		if isBlankRow(cells) {
			continue
		}
		row := Row{}
		for i, header := range headers {
			if i < len(cells) {
				row[header] = strings.TrimSpace(cells[i])
			} else {
				row[header] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		norm := normalizeHeader(h)
		if norm == "" {
			norm = fmt.Sprintf("col_%d", i)
		}
		out[i] = norm
	}
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
