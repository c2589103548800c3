package viewmodel

import (
	"github.com/Abraxas-365/resumelens/pkg/errx"
)

// State of one data source of the view.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateError       State = "error"
	StateUnavailable State = "unavailable"
)

// Problem is an error as rendered next to the section it belongs to.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func ProblemFrom(err error) *Problem {
	if err == nil {
		return nil
	}
	if e, ok := errx.As(err); ok {
		return &Problem{Code: e.Code, Message: e.Message, Status: e.HTTPStatus}
	}
	return &Problem{Code: string(errx.TypeInternal), Message: err.Error()}
}

// Source is one independently loading input. Data survives loading, error
// and unavailable states so that stale results stay visible; Stale marks
// data that no longer reflects the current request.
type Source[T any] struct {
	State  State    `json:"state"`
	Data   *T       `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
	Notice string   `json:"notice,omitempty"`
	Stale  bool     `json:"stale,omitempty"`
}

func (s Source[T]) Loading() Source[T] {
	s.State = StateLoading
	s.Error = nil
	s.Notice = ""
	return s
}

func (s Source[T]) Succeed(v T) Source[T] {
	return Source[T]{State: StateReady, Data: &v}
}

func (s Source[T]) Fail(err error) Source[T] {
	s.State = StateError
	s.Error = ProblemFrom(err)
	s.Notice = ""
	s.Stale = s.Data != nil
	return s
}

// MarkUnavailable records an informational reason for having no fresh data.
func (s Source[T]) MarkUnavailable(notice string) Source[T] {
	s.State = StateUnavailable
	s.Error = nil
	s.Notice = notice
	s.Stale = s.Data != nil
	return s
}

// Invalidate flags current data as stale without dropping it.
func (s Source[T]) Invalidate() Source[T] {
	s.Stale = s.Data != nil
	return s
}

func (s Source[T]) HasData() bool   { return s.Data != nil }
func (s Source[T]) IsLoading() bool { return s.State == StateLoading }
func (s Source[T]) Failed() bool    { return s.State == StateError }

// Map converts the data of a source, keeping its state.
func Map[T, U any](s Source[T], fn func(T) U) Source[U] {
	out := Source[U]{State: s.State, Error: s.Error, Notice: s.Notice, Stale: s.Stale}
	if s.Data != nil {
		v := fn(*s.Data)
		out.Data = &v
	}
	return out
}
