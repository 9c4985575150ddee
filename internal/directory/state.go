// Package directory is the application state controller. It owns the
// canonical record set and the user's list selections, and every change
// to them is a named transition on State.
//
// State is not safe for concurrent use. The interface mutates it from a
// single goroutine, only after the matching remote call has finished.
package directory

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/aanand-mishra/student-directory/internal/listview"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// RecordService is the remote store the controller works against.
// recordservice.Client implements it.
type RecordService interface {
	ListAll(ctx context.Context) ([]types.Student, error)
	Create(ctx context.Context, d types.Draft) (types.Student, error)
	Update(ctx context.Context, id string, d types.Draft) (types.Student, error)
	Delete(ctx context.Context, id string) error
}

// NoticeTTL is how long a notice stays up.
const NoticeTTL = 3 * time.Second

// User-facing texts posted by the transitions.
const (
	MsgLoadFailed   = "Failed to fetch students. Please try again later."
	MsgCreated      = "Student added successfully!"
	MsgUpdated      = "Student updated successfully!"
	MsgDeleted      = "Student deleted successfully!"
	MsgDeleteFailed = "Failed to delete student. Please try again."
)

// Status is the load state of the record set.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusLoadFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusLoadFailed:
		return "load failed"
	default:
		return "idle"
	}
}

// NoticeKind styles a notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message. Seq identifies it so that a stale expiry
// timer cannot clear a newer notice.
type Notice struct {
	Kind NoticeKind
	Text string
	Seq  uint64
}

// State is the controller's whole mutable state.
type State struct {
	Records   []types.Student
	Query     listview.Query
	Status    Status
	LoadError string
	// Notice is the notice on screen, or nil.
	Notice *Notice

	seq uint64
	log *slog.Logger
}

// NewState returns an idle State with the default query. A pageSize of
// zero or less keeps the default page size.
func NewState(pageSize int, log *slog.Logger) *State {
	q := listview.DefaultQuery()
	if pageSize > 0 {
		q.PageSize = pageSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &State{Query: q, log: log}
}

// View derives the visible page from the current records and query.
func (s *State) View() listview.View {
	return listview.Derive(s.Records, s.Query)
}

// Groups lists the groups offered by the group filter.
func (s *State) Groups() []string {
	return listview.Groups(s.Records)
}

// Load fetches every record through svc and applies the outcome. It is
// the blocking form of FetchStarted followed by FetchSucceeded or
// FetchFailed.
func (s *State) Load(ctx context.Context, svc RecordService) error {
	s.FetchStarted()
	records, err := svc.ListAll(ctx)
	if err != nil {
		s.FetchFailed(err)
		return err
	}
	s.FetchSucceeded(records)
	return nil
}

func (s *State) FetchStarted() {
	s.Status = StatusLoading
	s.LoadError = ""
}

func (s *State) FetchSucceeded(records []types.Student) {
	s.Records = slices.Clone(records)
	s.Status = StatusReady
	s.LoadError = ""
	s.log.Info("students loaded", slog.Int("count", len(records)))
}

// FetchFailed leaves the set empty and waits for the user to retry.
func (s *State) FetchFailed(err error) {
	s.Records = nil
	s.Status = StatusLoadFailed
	s.LoadError = MsgLoadFailed
	s.log.Error("error fetching students", slog.String("error", err.Error()))
}

// CreateSucceeded appends a record the store has just created.
func (s *State) CreateSucceeded(rec types.Student) {
	s.Records = append(s.Records, rec)
	s.Notify(NoticeSuccess, MsgCreated)
}

// UpdateSucceeded replaces the record with rec's id in place.
func (s *State) UpdateSucceeded(rec types.Student) {
	i := s.indexOf(rec.ID)
	if i < 0 {
		s.log.Warn("updated student not in local set", slog.String("id", rec.ID))
	} else {
		s.Records[i] = rec
	}
	s.Notify(NoticeSuccess, MsgUpdated)
}

// DeleteSucceeded removes the record with the given id.
func (s *State) DeleteSucceeded(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.Records = slices.Delete(s.Records, i, i+1)
	}
	s.Query.Page = s.View().Page
	s.Notify(NoticeSuccess, MsgDeleted)
}

// DeleteFailed reports a failed delete; the record stays.
func (s *State) DeleteFailed(id string, err error) {
	s.log.Error("error deleting student", slog.String("id", id), slog.String("error", err.Error()))
	msg := MsgDeleteFailed
	if m := networkMessage(err); m != "" {
		msg = m
	}
	s.Notify(NoticeError, msg)
}

// Saved applies the result of a form submission.
func (s *State) Saved(mode Mode, rec types.Student) {
	if mode == ModeEdit {
		s.UpdateSucceeded(rec)
		return
	}
	s.CreateSucceeded(rec)
}

// Find returns the record with the given id.
func (s *State) Find(id string) (types.Student, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, false
	}
	return s.Records[i], true
}

func (s *State) indexOf(id string) int {
	return slices.IndexFunc(s.Records, func(r types.Student) bool { return r.ID == id })
}

func (s *State) SearchChanged(term string) {
	s.Query.Search = term
	s.Query.Page = 1
}

func (s *State) GroupChanged(group string) {
	s.Query.Group = group
	s.Query.Page = 1
}

// SortRequested toggles the direction when field is already active and
// otherwise sorts ascending by field.
func (s *State) SortRequested(field listview.SortField) {
	if s.Query.SortBy == field {
		s.Query.Order = s.Query.Order.Flip()
	} else {
		s.Query.SortBy = field
		s.Query.Order = listview.Asc
	}
	s.Query.Page = 1
}

// PageChanged moves to page n, clamped to the pages that exist.
func (s *State) PageChanged(n int) {
	s.Query.Page = n
	s.Query.Page = s.View().Page
}

// Notify posts a notice and returns its sequence number. The caller
// schedules NoticeExpired(seq) after NoticeTTL.
func (s *State) Notify(kind NoticeKind, text string) uint64 {
	s.seq++
	s.Notice = &Notice{Kind: kind, Text: text, Seq: s.seq}
	return s.seq
}

// NoticeExpired clears the notice if it is still the one numbered seq.
func (s *State) NoticeExpired(seq uint64) {
	if s.Notice != nil && s.Notice.Seq == seq {
		s.Notice = nil
	}
}
