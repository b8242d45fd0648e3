package patients

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
)

type NoteKind string

const (
	NoteSession       NoteKind = "session"
	NotePlain         NoteKind = "note"
	NoteDiagnosis     NoteKind = "diagnosis"
	NoteTreatmentPlan NoteKind = "treatment_plan"
)

func (k NoteKind) Valid() bool {
	switch k {
	case NoteSession, NotePlain, NoteDiagnosis, NoteTreatmentPlan:
		return true
	}
	return false
}

type Category string

const (
	CategoryLifestyle  Category = "lifestyle"
	CategoryExercise   Category = "exercise"
	CategoryMedication Category = "medication"
	CategoryTherapy    Category = "therapy"
	CategoryGeneral    Category = "general"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLifestyle, CategoryExercise, CategoryMedication, CategoryTherapy, CategoryGeneral:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Note is a therapy journal entry. Patients never see notes.
type Note struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      NoteKind  `json:"type"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteDetails struct {
	Date    string
	Title   string
	Content string
	Kind    NoteKind
}

// Recommendation is advice written for a patient. It stays private to staff
// until shared; only shared recommendations can be marked read.
type Recommendation struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  Category   `json:"category"`
	Priority  Priority   `json:"priority"`
	AuthorID  string     `json:"author_id"`
	Shared    bool       `json:"is_shared"`
	SharedAt  *time.Time `json:"shared_at,omitempty"`
	Read      bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RecommendationDetails struct {
	Date     string
	Title    string
	Content  string
	Category Category
	Priority Priority
}

// Journal holds notes and recommendations per patient. Callers lock.
type Journal struct {
	notes map[uuid.UUID]*Note
	recs  map[uuid.UUID]*Recommendation
	now   func() time.Time
}

func NewJournal(now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{
		notes: make(map[uuid.UUID]*Note),
		recs:  make(map[uuid.UUID]*Recommendation),
		now:   now,
	}
}

func (j *Journal) AddNote(patientID uuid.UUID, authorID string, d NoteDetails) (Note, error) {
	if err := checkNote("add note", d); err != nil {
		return Note{}, err
	}
	now := j.now()
	n := &Note{
		ID:        uuid.New(),
		PatientID: patientID,
		Date:      d.Date,
		Title:     d.Title,
		Content:   d.Content,
		Kind:      d.Kind,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	j.notes[n.ID] = n
	return *n, nil
}

func (j *Journal) Note(id uuid.UUID) (Note, error) {
	n, ok := j.notes[id]
	if !ok {
		return Note{}, appointment.NewError(appointment.KindNotFound, "get note", "note_id", id.String())
	}
	return *n, nil
}

// UpdateNote replaces the editable fields. Author and patient never change.
func (j *Journal) UpdateNote(id uuid.UUID, d NoteDetails) (Note, error) {
	n, ok := j.notes[id]
	if !ok {
		return Note{}, appointment.NewError(appointment.KindNotFound, "update note", "note_id", id.String())
	}
	if err := checkNote("update note", d); err != nil {
		return Note{}, err
	}
	n.Date = d.Date
	n.Title = d.Title
	n.Content = d.Content
	n.Kind = d.Kind
	n.UpdatedAt = j.now()
	return *n, nil
}

func (j *Journal) DeleteNote(id uuid.UUID) error {
	if _, ok := j.notes[id]; !ok {
		return appointment.NewError(appointment.KindNotFound, "delete note", "note_id", id.String())
	}
	delete(j.notes, id)
	return nil
}

// Notes returns a patient's notes, newest date first.
func (j *Journal) Notes(patientID uuid.UUID) []Note {
	out := []Note{}
	for _, n := range j.notes {
		if n.PatientID == patientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date > out[b].Date
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func checkNote(op string, d NoteDetails) error {
	if d.Title == "" || d.Content == "" {
		return appointment.NewError(appointment.KindInvalidInput, op, "field", "title_content")
	}
	if !d.Kind.Valid() {
		return appointment.NewError(appointment.KindInvalidInput, op, "type", string(d.Kind))
	}
	return nil
}

// AddRecommendation stores an unshared recommendation.
func (j *Journal) AddRecommendation(patientID uuid.UUID, authorID string, d RecommendationDetails) (Recommendation, error) {
	const op = "add recommendation"
	if d.Title == "" || d.Content == "" {
		return Recommendation{}, appointment.NewError(appointment.KindInvalidInput, op, "field", "title_content")
	}
	if !d.Category.Valid() {
		return Recommendation{}, appointment.NewError(appointment.KindInvalidInput, op, "category", string(d.Category))
	}
	if !d.Priority.Valid() {
		return Recommendation{}, appointment.NewError(appointment.KindInvalidInput, op, "priority", string(d.Priority))
	}
	r := &Recommendation{
		ID:        uuid.New(),
		PatientID: patientID,
		Date:      d.Date,
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Priority:  d.Priority,
		AuthorID:  authorID,
		CreatedAt: j.now(),
	}
	j.recs[r.ID] = r
	return *r, nil
}

func (j *Journal) Recommendation(id uuid.UUID) (Recommendation, error) {
	r, ok := j.recs[id]
	if !ok {
		return Recommendation{}, appointment.NewError(appointment.KindNotFound, "get recommendation", "recommendation_id", id.String())
	}
	return *r, nil
}

// Share makes a recommendation visible to its patient. Sharing twice keeps
// the first share time.
func (j *Journal) Share(id uuid.UUID) (Recommendation, error) {
	r, ok := j.recs[id]
	if !ok {
		return Recommendation{}, appointment.NewError(appointment.KindNotFound, "share recommendation", "recommendation_id", id.String())
	}
	if !r.Shared {
		at := j.now()
		r.Shared = true
		r.SharedAt = &at
	}
	return *r, nil
}

func (j *Journal) MarkRead(id uuid.UUID) (Recommendation, error) {
	const op = "mark recommendation read"
	r, ok := j.recs[id]
	if !ok || !r.Shared {
		return Recommendation{}, appointment.NewError(appointment.KindNotFound, op, "recommendation_id", id.String())
	}
	if !r.Read {
		at := j.now()
		r.Read = true
		r.ReadAt = &at
	}
	return *r, nil
}

func (j *Journal) DeleteRecommendation(id uuid.UUID) error {
	if _, ok := j.recs[id]; !ok {
		return appointment.NewError(appointment.KindNotFound, "delete recommendation", "recommendation_id", id.String())
	}
	delete(j.recs, id)
	return nil
}

// Recommendations returns a patient's recommendations, newest date first.
// With sharedOnly the unshared drafts are left out.
func (j *Journal) Recommendations(patientID uuid.UUID, sharedOnly bool) []Recommendation {
	out := []Recommendation{}
	for _, r := range j.recs {
		if r.PatientID == patientID && (r.Shared || !sharedOnly) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date > out[b].Date
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// DropPatient removes everything written for a patient.
func (j *Journal) DropPatient(patientID uuid.UUID) (notes, recs int) {
	for id, n := range j.notes {
		if n.PatientID == patientID {
			delete(j.notes, id)
			notes++
		}
	}
	for id, r := range j.recs {
		if r.PatientID == patientID {
			delete(j.recs, id)
			recs++
		}
	}
	return notes, recs
}
