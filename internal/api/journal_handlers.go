package api

import (
	"net/http"
	"time"

	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/scheduling"
)

func listNotesHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		notes, err := sched.PatientNotes(GetIdentity(r.Context()), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func createNoteHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req NoteRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		n, err := sched.AddNote(r.Context(), GetIdentity(r.Context()), id, toNoteDetails(req))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

func updateNoteHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req NoteRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		n, err := sched.UpdateNote(r.Context(), GetIdentity(r.Context()), id, toNoteDetails(req))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func deleteNoteHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := sched.DeleteNote(r.Context(), GetIdentity(r.Context()), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toNoteDetails(req NoteRequest) patients.NoteDetails {
	return patients.NoteDetails{
		Date:    req.Date,
		Title:   req.Title,
		Content: req.Content,
		Kind:    patients.NoteKind(req.Type),
	}
}

func listRecommendationsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		recs, err := sched.PatientRecommendations(GetIdentity(r.Context()), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func createRecommendationHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req RecommendationRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		rec, err := sched.AddRecommendation(r.Context(), GetIdentity(r.Context()), id, patients.RecommendationDetails{
			Date:     req.Date,
			Title:    req.Title,
			Content:  req.Content,
			Category: patients.Category(req.Category),
			Priority: patients.Priority(req.Priority),
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func shareRecommendationHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		rec, err := sched.ShareRecommendation(r.Context(), GetIdentity(r.Context()), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func deleteRecommendationHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := sched.DeleteRecommendation(r.Context(), GetIdentity(r.Context()), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// myRecommendationsHandler lists what staff shared with the calling patient.
func myRecommendationsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sched.MyRecommendations(GetIdentity(r.Context())))
	}
}

func markRecommendationReadHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		rec, err := sched.MarkRecommendationRead(r.Context(), GetIdentity(r.Context()), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// listReviewsHandler serves published reviews; the admin route passes
// pending to see the moderation queue.
func listReviewsHandler(sched *scheduling.Scheduler, pending bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sched.Reviews(GetIdentity(r.Context()), pending)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func submitReviewHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReviewRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		rev, err := sched.SubmitReview(r.Context(), req.PatientName, req.Rating, req.Text)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, rev)
	}
}

func approveReviewHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		rev, err := sched.ApproveReview(r.Context(), GetIdentity(r.Context()), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rev)
	}
}

func rejectReviewHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := sched.RejectReview(r.Context(), GetIdentity(r.Context()), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func createSpecialistHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSpecialistRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		spec := practice.Specialist{
			ID:              req.ID,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Title:           req.Title,
			Services:        req.Services,
			WorkHours:       req.WorkHours,
			OnlineAvailable: req.OnlineAvailable,
			WorkDays:        make([]time.Weekday, len(req.WorkDays)),
		}
		for i, d := range req.WorkDays {
			spec.WorkDays[i] = time.Weekday(d)
		}

		created, err := sched.AddSpecialist(r.Context(), spec)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSpecialistResponse(created))
	}
}
