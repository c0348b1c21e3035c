package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	detailsSheet = "Details"

	colStaffName = "staff name"
	colInTime    = "in-time"
	colOutTime   = "out-time"
)

var (
	filenameDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clock24      = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	clock12      = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?::(\d{2}))?\s?([ap]m)$`)
)

// Row is one line of the Details sheet. Missing times are nil.
type Row struct {
	Line      int
	StaffName string
	In        *Clock
	Out       *Clock
}

// Clock is a wall-clock time without a date.
type Clock struct {
	Hour, Minute, Second int
}

func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, c.Second, 0, loc)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock accepts "HH:MM", "HH:MM:SS" and 12 hour forms such as "9:05 am".
// Blank input yields nil without an error.
func ParseClock(s string) (*Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var (
		c      Clock
		suffix string
	)
	if m := clock24.FindStringSubmatch(s); m != nil {
		c.Hour, _ = strconv.Atoi(m[1])
		c.Minute, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			c.Second, _ = strconv.Atoi(m[3])
		}
	} else if m := clock12.FindStringSubmatch(s); m != nil {
		c.Hour, _ = strconv.Atoi(m[1])
		c.Minute, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			c.Second, _ = strconv.Atoi(m[3])
		}
		suffix = strings.ToLower(m[4])
		if c.Hour < 1 || c.Hour > 12 {
			return nil, fmt.Errorf("invalid time %q", s)
		}
		switch {
		case suffix == "am" && c.Hour == 12:
			c.Hour = 0
		case suffix == "pm" && c.Hour != 12:
			c.Hour += 12
		}
	} else {
		return nil, fmt.Errorf("invalid time %q", s)
	}

	if c.Hour > 23 || c.Minute > 59 || c.Second > 59 {
		return nil, fmt.Errorf("invalid time %q", s)
	}
	return &c, nil
}

// DateFromFilename returns the first YYYY-MM-DD in name, or false.
func DateFromFilename(name string) (time.Time, bool) {
	m := filenameDate.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ReadRows parses the Details sheet. Columns are located through the header
// row; rows without a staff name are ignored. A row whose times cannot be
// parsed is returned with a nil leg and reported in the error slice.
func ReadRows(r io.Reader) ([]Row, []error, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(detailsSheet); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("workbook has no %q sheet", detailsSheet)
	}

	rows, err := f.GetRows(detailsSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %q sheet: %w", detailsSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	cols := map[string]int{colStaffName: -1, colInTime: -1, colOutTime: -1}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	if cols[colStaffName] < 0 {
		return nil, nil, fmt.Errorf("%q sheet has no Staff Name column", detailsSheet)
	}

	cell := func(row []string, key string) string {
		i := cols[key]
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var (
		out     []Row
		rowErrs []error
	)
	for n, raw := range rows[1:] {
		line := n + 2
		name := strings.TrimSpace(cell(raw, colStaffName))
		if name == "" {
			continue
		}

		row := Row{Line: line, StaffName: name}
		if row.In, err = ParseClock(cell(raw, colInTime)); err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d In-Time: %w", line, err))
		}
		if row.Out, err = ParseClock(cell(raw, colOutTime)); err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d Out-Time: %w", line, err))
		}
		out = append(out, row)
	}
	return out, rowErrs, nil
}
