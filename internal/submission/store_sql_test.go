package submission

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/db"
)

func newSQLStore(t *testing.T, name string) *SQLStore {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return NewSQLStore(dbh, db.DriverSQLite.DriverName())
}

func TestSQLStoreLifecycle(t *testing.T) {
	st := newSQLStore(t, "submission_lifecycle")
	ctx := context.Background()

	rec := Record{
		ID: "sub-1", SessionID: "sess-1", StudentID: "S1", DeviceID: "dev-1",
		Payload: Payload{StudentName: "Ada", StudentID: "S1", Score: 1, TotalQuestions: 2, AllAnswers: "(1:2, 2:X)"},
	}
	if err := st.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := st.Create(ctx, Record{ID: "sub-2", SessionID: "sess-2", StudentID: "S2"}); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(ctx, "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusPending || got.Payload != rec.Payload || got.DeviceID != "dev-1" {
		t.Fatalf("unexpected record %+v", got)
	}

	if err := st.MarkFailed(ctx, "sub-1", "timeout"); err != nil {
		t.Fatal(err)
	}
	failed, err := st.List(ctx, ListOpts{Status: StatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Retries != 1 || failed[0].LastError != "timeout" {
		t.Fatalf("unexpected failed list %+v", failed)
	}

	if err := st.MarkOK(ctx, "sub-1"); err != nil {
		t.Fatal(err)
	}
	got, _ = st.Get(ctx, "sub-1")
	if got.Status != StatusOK || got.LastError != "" {
		t.Fatalf("unexpected record after ok %+v", got)
	}

	all, err := st.List(ctx, ListOpts{Limit: 1})
	if err != nil || len(all) != 1 {
		t.Fatalf("paged list = %v, %v", all, err)
	}
	byStudent, _ := st.List(ctx, ListOpts{StudentID: "S2"})
	if len(byStudent) != 1 || byStudent[0].ID != "sub-2" {
		t.Fatalf("student filter = %+v", byStudent)
	}
}

func TestSQLStoreNotFound(t *testing.T) {
	st := newSQLStore(t, "submission_notfound")
	ctx := context.Background()
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.MarkOK(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOffsetWithoutLimit(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    newSQLStore(t, "submission_offset"),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			at := time.Unix(1_700_000_000, 0)
			for i, id := range []string{"a", "b", "c"} {
				if err := st.Create(ctx, Record{ID: id, SessionID: "s-" + id, StudentID: id, CreatedAt: at.Add(time.Duration(i) * time.Second)}); err != nil {
					t.Fatal(err)
				}
			}
			cases := []struct {
				opts ListOpts
				want []string
			}{
				{ListOpts{Offset: 1}, []string{"b", "c"}},
				{ListOpts{Offset: 5}, nil},
				{ListOpts{Offset: -2}, []string{"a", "b", "c"}},
				{ListOpts{Offset: 1, Limit: 1}, []string{"b"}},
			}
			for _, tc := range cases {
				got, err := st.List(ctx, tc.opts)
				if err != nil {
					t.Fatal(err)
				}
				var ids []string
				for _, r := range got {
					ids = append(ids, r.ID)
				}
				if !reflect.DeepEqual(ids, tc.want) {
					t.Fatalf("List(%+v) = %v, want %v", tc.opts, ids, tc.want)
				}
			}
		})
	}
}
