package syncx

import (
	"context"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/db"
)

func TestEventRepoAppendSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:eventlog_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer dbh.Close()

	r := NewEventRepo(dbh, "")
	if err := r.Append(ctx, TypeSessionStarted, "sess-1", map[string]string{"student_id": "S1"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Append(ctx, TypeSessionSubmitted, "sess-1", map[string]int{"score": 2}); err != nil {
		t.Fatal(err)
	}

	evs, err := r.Since(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].Type != TypeSessionStarted || evs[1].DataJSON != `{"score":2}` {
		t.Fatalf("unexpected events %+v", evs)
	}
	if evs[0].SiteID != "local" {
		t.Fatalf("site = %q", evs[0].SiteID)
	}

	later, _ := r.Since(ctx, evs[0].Seq, 10)
	if len(later) != 1 || later[0].Seq != evs[1].Seq {
		t.Fatalf("since filter = %+v", later)
	}
}
