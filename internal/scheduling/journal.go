package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/patients"
)

// authorID is how staff are recorded on journal entries.
func (id Identity) authorID() string {
	if id.Role == appointment.RoleSpecialist {
		return id.SpecialistID
	}
	return string(appointment.RoleAdmin)
}

// mayEdit reports whether who can change an entry written by author.
// Specialists only touch their own entries.
func (id Identity) mayEdit(author string) bool {
	return id.Role == appointment.RoleAdmin || (id.Role == appointment.RoleSpecialist && id.SpecialistID == author)
}

func (s *Scheduler) requireStaff(op string, who Identity) error {
	if !who.Staff() {
		return appointment.NewError(appointment.KindForbidden, op, "role", string(who.Role))
	}
	return nil
}

// entryDate defaults an empty journal date to today.
func (s *Scheduler) entryDate(op, date string) (string, error) {
	if date == "" {
		return s.clock.Now().Date, nil
	}
	if !clock.ValidDate(date) {
		return "", appointment.NewError(appointment.KindInvalidInput, op, "date", date)
	}
	return date, nil
}

func (s *Scheduler) PatientNotes(who Identity, patientID uuid.UUID) ([]patients.Note, error) {
	if err := s.requireStaff("list notes", who); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.patients.Get(patientID); err != nil {
		return nil, err
	}
	return s.journal.Notes(patientID), nil
}

func (s *Scheduler) AddNote(ctx context.Context, who Identity, patientID uuid.UUID, d patients.NoteDetails) (patients.Note, error) {
	const op = "add note"
	if err := s.requireStaff(op, who); err != nil {
		return patients.Note{}, err
	}
	date, err := s.entryDate(op, d.Date)
	if err != nil {
		return patients.Note{}, err
	}
	d.Date = date

	s.mu.Lock()
	var n patients.Note
	if _, err = s.patients.Get(patientID); err == nil {
		n, err = s.journal.AddNote(patientID, who.authorID(), d)
	}
	s.mu.Unlock()
	if err != nil {
		return patients.Note{}, err
	}

	s.logEvent(ctx, nil, eventlog.EventNoteCreated, notePayload(n))
	return n, nil
}

func (s *Scheduler) UpdateNote(ctx context.Context, who Identity, id uuid.UUID, d patients.NoteDetails) (patients.Note, error) {
	const op = "update note"
	if err := s.requireStaff(op, who); err != nil {
		return patients.Note{}, err
	}
	date, err := s.entryDate(op, d.Date)
	if err != nil {
		return patients.Note{}, err
	}
	d.Date = date

	s.mu.Lock()
	n, err := s.journal.Note(id)
	if err == nil {
		if !who.mayEdit(n.AuthorID) {
			err = appointment.NewError(appointment.KindForbidden, op, "note_id", id.String(), "author_id", n.AuthorID)
		} else {
			n, err = s.journal.UpdateNote(id, d)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return patients.Note{}, err
	}

	s.logEvent(ctx, nil, eventlog.EventNoteUpdated, notePayload(n))
	return n, nil
}

func (s *Scheduler) DeleteNote(ctx context.Context, who Identity, id uuid.UUID) error {
	const op = "delete note"
	if err := s.requireStaff(op, who); err != nil {
		return err
	}

	s.mu.Lock()
	n, err := s.journal.Note(id)
	if err == nil {
		if !who.mayEdit(n.AuthorID) {
			err = appointment.NewError(appointment.KindForbidden, op, "note_id", id.String(), "author_id", n.AuthorID)
		} else {
			err = s.journal.DeleteNote(id)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logEvent(ctx, nil, eventlog.EventNoteDeleted, notePayload(n))
	return nil
}

func notePayload(n patients.Note) map[string]any {
	return map[string]any{
		"note_id":    n.ID.String(),
		"patient_id": n.PatientID.String(),
		"author_id":  n.AuthorID,
		"type":       n.Kind,
	}
}

// PatientRecommendations is the staff view, drafts included.
func (s *Scheduler) PatientRecommendations(who Identity, patientID uuid.UUID) ([]patients.Recommendation, error) {
	if err := s.requireStaff("list recommendations", who); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.patients.Get(patientID); err != nil {
		return nil, err
	}
	return s.journal.Recommendations(patientID, false), nil
}

// MyRecommendations returns what was shared with the calling patient. A
// caller without a patient record has none.
func (s *Scheduler) MyRecommendations(who Identity) []patients.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patientOf(who)
	if !ok {
		return []patients.Recommendation{}
	}
	return s.journal.Recommendations(p.ID, true)
}

func (s *Scheduler) patientOf(who Identity) (patients.Patient, bool) {
	if who.Role != appointment.RolePatient || who.Email == "" {
		return patients.Patient{}, false
	}
	return s.patients.ByEmail(who.Email)
}

func (s *Scheduler) AddRecommendation(ctx context.Context, who Identity, patientID uuid.UUID, d patients.RecommendationDetails) (patients.Recommendation, error) {
	const op = "add recommendation"
	if err := s.requireStaff(op, who); err != nil {
		return patients.Recommendation{}, err
	}
	date, err := s.entryDate(op, d.Date)
	if err != nil {
		return patients.Recommendation{}, err
	}
	d.Date = date

	s.mu.Lock()
	var r patients.Recommendation
	if _, err = s.patients.Get(patientID); err == nil {
		r, err = s.journal.AddRecommendation(patientID, who.authorID(), d)
	}
	s.mu.Unlock()
	if err != nil {
		return patients.Recommendation{}, err
	}

	s.logEvent(ctx, nil, eventlog.EventRecommendationCreated, recommendationPayload(r))
	return r, nil
}

func (s *Scheduler) ShareRecommendation(ctx context.Context, who Identity, id uuid.UUID) (patients.Recommendation, error) {
	const op = "share recommendation"
	if err := s.requireStaff(op, who); err != nil {
		return patients.Recommendation{}, err
	}

	s.mu.Lock()
	r, err := s.journal.Recommendation(id)
	wasShared := r.Shared
	if err == nil {
		if !who.mayEdit(r.AuthorID) {
			err = appointment.NewError(appointment.KindForbidden, op, "recommendation_id", id.String(), "author_id", r.AuthorID)
		} else {
			r, err = s.journal.Share(id)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return patients.Recommendation{}, err
	}

	if !wasShared {
		s.logEvent(ctx, nil, eventlog.EventRecommendationShared, recommendationPayload(r))
	}
	return r, nil
}

// MarkRecommendationRead is the patient acknowledging a shared
// recommendation. Other patients' and unshared ones read as not found.
func (s *Scheduler) MarkRecommendationRead(ctx context.Context, who Identity, id uuid.UUID) (patients.Recommendation, error) {
	const op = "mark recommendation read"
	if who.Role != appointment.RolePatient {
		return patients.Recommendation{}, appointment.NewError(appointment.KindForbidden, op, "role", string(who.Role))
	}

	s.mu.Lock()
	var (
		r         patients.Recommendation
		err       error
		firstRead bool
	)
	p, ok := s.patientOf(who)
	cur, gerr := s.journal.Recommendation(id)
	if !ok || gerr != nil || cur.PatientID != p.ID {
		err = appointment.NewError(appointment.KindNotFound, op, "recommendation_id", id.String())
	} else {
		firstRead = !cur.Read
		r, err = s.journal.MarkRead(id)
	}
	s.mu.Unlock()
	if err != nil {
		return patients.Recommendation{}, err
	}

	if firstRead {
		s.logEvent(ctx, nil, eventlog.EventRecommendationRead, recommendationPayload(r))
	}
	return r, nil
}

func (s *Scheduler) DeleteRecommendation(ctx context.Context, who Identity, id uuid.UUID) error {
	const op = "delete recommendation"
	if err := s.requireStaff(op, who); err != nil {
		return err
	}

	s.mu.Lock()
	r, err := s.journal.Recommendation(id)
	if err == nil {
		if !who.mayEdit(r.AuthorID) {
			err = appointment.NewError(appointment.KindForbidden, op, "recommendation_id", id.String(), "author_id", r.AuthorID)
		} else {
			err = s.journal.DeleteRecommendation(id)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logEvent(ctx, nil, eventlog.EventRecommendationDeleted, recommendationPayload(r))
	return nil
}

func recommendationPayload(r patients.Recommendation) map[string]any {
	return map[string]any{
		"recommendation_id": r.ID.String(),
		"patient_id":        r.PatientID.String(),
		"author_id":         r.AuthorID,
		"shared":            r.Shared,
		"read":              r.Read,
	}
}
