package quiz

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/roster"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

// Source names the files a quiz is built from.
type Source struct {
	Blobs       storage.BlobStore
	Title       string
	BankFile    string
	RosterFile  string // optional; .xlsx, .csv or "CODE, Name" text
	RosterSheet string
	Options     bank.Options
	PerPage     int
}

func (s Source) Load() (Content, error) {
	raw, err := s.Blobs.ReadAll(s.BankFile)
	if err != nil {
		return Content{}, fmt.Errorf("read bank %s: %w", s.BankFile, err)
	}
	c := Content{
		Title:  s.Title,
		Bank:   bank.Parse(string(raw), s.Options),
		Roster: roster.New(),
		Paging: Paging{PerPage: s.PerPage},
	}
	if s.RosterFile == "" {
		return c, nil
	}
	rr, err := s.Blobs.ReadAll(s.RosterFile)
	if err != nil {
		return Content{}, fmt.Errorf("read roster %s: %w", s.RosterFile, err)
	}
	switch strings.ToLower(path.Ext(s.RosterFile)) {
	case ".xlsx":
		c.Roster, err = roster.ImportXLSX(bytes.NewReader(rr), s.RosterSheet)
	case ".csv":
		c.Roster, err = roster.ImportCSV(bytes.NewReader(rr))
	default:
		c.Roster = roster.Parse(string(rr))
	}
	if err != nil {
		return Content{}, fmt.Errorf("roster %s: %w", s.RosterFile, err)
	}
	return c, nil
}
