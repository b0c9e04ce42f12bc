package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnknownStudent = errors.New("unknown student code")

type Student struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Roster keeps students in order of first appearance.
type Roster struct {
	order  []string
	byCode map[string]string
}

func New() *Roster { return &Roster{byCode: map[string]string{}} }

// Add inserts or renames a student. Blank code or name is ignored.
func (r *Roster) Add(code, name string) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" || name == "" {
		return
	}
	if _, ok := r.byCode[code]; !ok {
		r.order = append(r.order, code)
	}
	r.byCode[code] = name
}

func (r *Roster) Name(code string) (string, bool) {
	if r == nil {
		return "", false
	}
	n, ok := r.byCode[strings.TrimSpace(code)]
	return n, ok
}

// Lookup is Name with an error for unknown codes.
func (r *Roster) Lookup(code string) (string, error) {
	n, ok := r.Name(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStudent, code)
	}
	return n, nil
}

func (r *Roster) Students() []Student {
	if r == nil {
		return nil
	}
	out := make([]Student, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, Student{Code: c, Name: r.byCode[c]})
	}
	return out
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Parse reads "CODE, Full Name" lines. The first comma separates code from
// name, so names may contain commas. Lines missing either part are skipped.
func Parse(raw string) *Roster {
	r := New()
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		code, name, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		r.Add(code, name)
	}
	return r
}

func ParseReader(rd io.Reader) (*Roster, error) {
	buf, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(string(buf)), nil
}

// ImportCSV reads code,name records; a header row whose first cell is "code" is skipped.
func ImportCSV(rd io.Reader) (*Roster, error) {
	cr := csv.NewReader(rd)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	r := New()
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster csv: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "code") {
				continue
			}
		}
		if len(rec) < 2 {
			continue
		}
		r.Add(rec[0], rec[1])
	}
	return r, nil
}

// ImportXLSX reads column A (code) and column B (name) of the given sheet, or
// the first sheet when sheet is empty. A "code" header row is skipped.
func ImportXLSX(rd io.Reader, sheet string) (*Roster, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("roster sheet %q: %w", sheet, err)
	}
	r := New()
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "code") {
			continue
		}
		r.Add(row[0], row[1])
	}
	return r, nil
}
