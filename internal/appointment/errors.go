package appointment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a scheduling failure. Callers branch on the kind and
// render their own messages from the error's fields.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindSlotConflict      Kind = "slot_conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindScheduleViolation Kind = "schedule_violation"
	KindPastSlot          Kind = "past_slot"
	KindDuplicatePatient  Kind = "duplicate_patient"
	KindInvalidInput      Kind = "invalid_input"
	KindInUse             Kind = "in_use"
	KindForbidden         Kind = "forbidden"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrSlotConflict      = &Error{Kind: KindSlotConflict}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrScheduleViolation = &Error{Kind: KindScheduleViolation}
	ErrPastSlot          = &Error{Kind: KindPastSlot}
	ErrDuplicatePatient  = &Error{Kind: KindDuplicatePatient}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrInUse             = &Error{Kind: KindInUse}
	ErrForbidden         = &Error{Kind: KindForbidden}
)

type Error struct {
	Kind   Kind
	Op     string
	Fields map[string]string
}

// NewError builds an error from alternating key/value pairs.
func NewError(kind Kind, op string, kv ...string) *Error {
	e := &Error{Kind: kind, Op: op}
	if len(kv) > 0 {
		e.Fields = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Fields[kv[i]] = kv[i+1]
		}
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Fields[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
