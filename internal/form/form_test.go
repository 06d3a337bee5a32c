package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/moviesearch"
)

var fixedNow = time.Date(2026, time.October, 19, 21, 30, 0, 0, time.UTC)

type fakeSaver struct {
	created []model.MovieNightInput
	updated map[int64]model.MovieNightInput
	deleted []int64
	err     error
}

func (f *fakeSaver) calls() int {
	return len(f.created) + len(f.updated) + len(f.deleted)
}

func (f *fakeSaver) Create(ctx context.Context, in model.MovieNightInput) (*model.MovieNight, error) {
	f.created = append(f.created, in)
	if f.err != nil {
		return nil, f.err
	}
	d, _ := model.ParseDate(in.ScheduledDate)
	return &model.MovieNight{ID: 42, MovieTitle: in.MovieTitle, ScheduledDate: d, StartTime: in.StartTime}, nil
}

func (f *fakeSaver) Update(ctx context.Context, id int64, in model.MovieNightInput) (*model.MovieNight, error) {
	if f.updated == nil {
		f.updated = map[int64]model.MovieNightInput{}
	}
	f.updated[id] = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.MovieNight{ID: id, MovieTitle: in.MovieTitle}, nil
}

func (f *fakeSaver) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func newEditor(s Saver) *Editor {
	return NewEditor(s, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
}

func validFields() Fields {
	return Fields{MovieTitle: "Alien", ScheduledDate: "2026-10-20", StartTime: "19:00"}
}

func TestValidate(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)

	tests := []struct {
		name  string
		edit  func(*Fields)
		field string
	}{
		{"empty title", func(f *Fields) { f.MovieTitle = "   " }, FieldTitle},
		{"missing date", func(f *Fields) { f.ScheduledDate = "" }, FieldDate},
		{"bad date", func(f *Fields) { f.ScheduledDate = "20/10/2026" }, FieldDate},
		{"past date", func(f *Fields) { f.ScheduledDate = "2026-10-18" }, FieldDate},
		{"missing time", func(f *Fields) { f.StartTime = "" }, FieldStartTime},
		{"bad time", func(f *Fields) { f.StartTime = "25:00" }, FieldStartTime},
		{"bad url", func(f *Fields) { f.ImageURL = "not a url" }, FieldImageURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.edit(&f)
			errs := f.Validate(today)
			if _, ok := errs[tt.field]; !ok || len(errs) != 1 {
				t.Errorf("errors = %v, want only %s", errs, tt.field)
			}
		})
	}

	f := validFields()
	f.ScheduledDate = "2026-10-19"
	f.ImageURL = "https://image.tmdb.org/t/p/w500/alien.jpg"
	if errs := f.Validate(today); len(errs) != 0 {
		t.Errorf("today with poster: errors = %v", errs)
	}
}

func TestInputNormalizes(t *testing.T) {
	f := Fields{MovieTitle: "  Alien ", ScheduledDate: "2026-10-20", StartTime: "19:00", Notes: " ", ImageURL: "", Genre: "Horror"}
	in := f.Input()

	if in.MovieTitle != "Alien" {
		t.Errorf("title = %q", in.MovieTitle)
	}
	if in.StartTime != "19:00:00" {
		t.Errorf("start = %q, want 19:00:00", in.StartTime)
	}
	if in.Notes != nil || in.ImageURL != nil {
		t.Errorf("notes = %v image = %v, want nil", in.Notes, in.ImageURL)
	}
	if in.Genre == nil || *in.Genre != "Horror" {
		t.Errorf("genre = %v", in.Genre)
	}
}

func TestInputPadsOneDigitHour(t *testing.T) {
	f := Fields{MovieTitle: "Alien", ScheduledDate: "2026-10-20", StartTime: "7:30"}
	if in := f.Input(); in.StartTime != "07:30:00" {
		t.Errorf("start = %q, want 07:30:00", in.StartTime)
	}
}

func TestSubmitEmptyTitleMakesNoCall(t *testing.T) {
	s := &fakeSaver{}
	e := newEditor(s)
	e.OpenNew(model.NewDate(2026, time.October, 20))

	_, err := e.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if _, ok := verr.Fields[FieldTitle]; !ok {
		t.Errorf("fields = %v, want movieTitle error", verr.Fields)
	}
	if s.calls() != 0 {
		t.Errorf("saver called %d times, want 0", s.calls())
	}
	if !e.IsOpen() {
		t.Error("editor should stay open")
	}
}

func TestSubmitPastDateMakesNoCall(t *testing.T) {
	s := &fakeSaver{}
	e := newEditor(s)
	e.OpenNew(model.NewDate(2026, time.October, 18))
	e.Fields.MovieTitle = "Alien"

	_, err := e.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[FieldDate] == "" {
		t.Fatalf("err = %v, want scheduledDate error", err)
	}
	if s.calls() != 0 {
		t.Errorf("saver called %d times, want 0", s.calls())
	}
}

func TestSubmitCreate(t *testing.T) {
	s := &fakeSaver{}
	e := newEditor(s)
	e.OpenNew(model.NewDate(2026, time.October, 19))
	e.Fields.MovieTitle = "Alien"
	e.Fields.StartTime = "20:15"

	n, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n.ID != 42 {
		t.Errorf("id = %d", n.ID)
	}
	if len(s.created) != 1 || s.created[0].StartTime != "20:15:00" {
		t.Errorf("created = %+v", s.created)
	}
	if e.IsOpen() {
		t.Error("editor should close after save")
	}
}

func TestSubmitUpdateFailureKeepsInput(t *testing.T) {
	s := &fakeSaver{err: errors.New("server down")}
	e := newEditor(s)
	e.OpenExisting(model.MovieNight{ID: 7, MovieTitle: "Heat", ScheduledDate: model.NewDate(2026, time.November, 1), StartTime: "21:00:00"})
	e.Fields.Notes = "bring snacks"

	if _, err := e.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.updated[7]; !ok {
		t.Error("expected update call for id 7")
	}
	if !e.IsOpen() {
		t.Error("editor should stay open after failure")
	}
	if e.Fields.Notes != "bring snacks" || e.Fields.MovieTitle != "Heat" {
		t.Errorf("fields = %+v, want input intact", e.Fields)
	}
	if e.LastError() == nil {
		t.Error("expected LastError")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := &fakeSaver{}
	e := newEditor(s)
	e.OpenExisting(model.MovieNight{ID: 7, MovieTitle: "Heat"})

	if err := e.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("err = %v, want ErrDeleteNotConfirmed", err)
	}
	if len(s.deleted) != 0 {
		t.Fatal("delete issued without confirmation")
	}

	if err := e.RequestDelete(); err != nil {
		t.Fatal(err)
	}
	e.CancelDelete()
	if err := e.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("after cancel err = %v", err)
	}

	e.RequestDelete()
	if err := e.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(s.deleted) != 1 || s.deleted[0] != 7 {
		t.Errorf("deleted = %v", s.deleted)
	}
	if e.IsOpen() {
		t.Error("editor should close after delete")
	}
}

func TestDeleteNewNotAllowed(t *testing.T) {
	e := newEditor(&fakeSaver{})
	e.OpenNew(model.Date{})
	if err := e.RequestDelete(); !errors.Is(err, ErrNotSaved) {
		t.Errorf("err = %v, want ErrNotSaved", err)
	}
}

func TestApplySelection(t *testing.T) {
	e := newEditor(&fakeSaver{})
	e.OpenNew(model.NewDate(2026, time.October, 20))

	poster := "https://image.tmdb.org/t/p/w500/alien.jpg"
	genre := "Horror"
	e.ApplySelection(moviesearch.DatabaseSelection{MovieID: 348, Fields: moviesearch.Fields{
		Title:     "Alien",
		PosterURL: &poster,
		Overview:  "In space no one can hear you scream.",
		Genre:     &genre,
	}})
	if e.Fields.ImageURL != poster || e.Fields.Genre != genre || e.Fields.Notes == "" {
		t.Fatalf("fields = %+v, want autofilled", e.Fields)
	}

	e.ApplySelection(moviesearch.ManualEntry{Text: "Alien 3"})
	if e.Fields.MovieTitle != "Alien 3" {
		t.Errorf("title = %q", e.Fields.MovieTitle)
	}
	if e.Fields.ImageURL != "" || e.Fields.Genre != "" || e.Fields.Notes != "" {
		t.Errorf("fields = %+v, want autofill cleared", e.Fields)
	}
}

func TestApplySelectionKeepsUserNotes(t *testing.T) {
	e := newEditor(&fakeSaver{})
	e.OpenNew(model.Date{})
	e.Fields.Notes = "my notes"

	e.ApplySelection(moviesearch.DatabaseSelection{MovieID: 1, Fields: moviesearch.Fields{Title: "Obscure"}})
	if e.Fields.Notes != "my notes" {
		t.Errorf("notes = %q, want kept when overview empty", e.Fields.Notes)
	}
	e.ApplySelection(moviesearch.Unset{})
	if e.Fields.Notes != "my notes" || e.Fields.MovieTitle != "" {
		t.Errorf("fields = %+v", e.Fields)
	}
}

func TestOpenExistingDefaults(t *testing.T) {
	e := newEditor(&fakeSaver{})
	e.OpenExisting(model.MovieNight{ID: 3, MovieTitle: "Heat", ScheduledDate: model.NewDate(2026, time.December, 1)})
	if e.Fields.StartTime != DefaultStartTime {
		t.Errorf("start = %q, want default", e.Fields.StartTime)
	}
	if e.Fields.ScheduledDate != "2026-12-01" {
		t.Errorf("date = %q", e.Fields.ScheduledDate)
	}
	if e.IsNew() {
		t.Error("expected existing")
	}
}
