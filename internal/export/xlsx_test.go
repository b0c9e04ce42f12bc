package export

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

func TestWriteSubmissionsXLSX(t *testing.T) {
	recs := []submission.Record{{
		ID:     "r1",
		Status: submission.StatusOK,
		Payload: submission.Payload{
			StudentName: "Ada Lovelace", StudentID: "S1", Score: 2, TotalQuestions: 3, AllAnswers: "(1:2, 2:X, 3:1|3)",
		},
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := WriteSubmissionsXLSX(&buf, recs); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Header) {
		t.Fatalf("header = %v", rows[0])
	}
	want := []string{"S1", "Ada Lovelace", "2", "3", "(1:2, 2:X, 3:1|3)", "ok", "2024-03-01 09:30:00"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Fatalf("row = %v, want %v", rows[1], want)
	}
}

func TestWriteSubmissionsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSubmissionsXLSX(&buf, nil); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}
