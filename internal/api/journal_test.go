package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/reviews"
)

var (
	karinaUser = caller{role: "specialist", specialistID: "karina"}
	adaUser    = caller{role: "specialist", specialistID: "ada"}
)

func createEwa(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, adminUser, http.MethodPost, "/admin/patients",
		PatientRequest{FirstName: "Ewa", LastName: "Nowak", Email: "ewa@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[patients.Patient](t, rec).ID.String()
}

func TestPatientNotesEndpoints(t *testing.T) {
	h := newTestRouter(t)
	pid := createEwa(t, h)

	rec := do(t, h, karinaUser, http.MethodPost, "/admin/patients/"+pid+"/notes", NoteRequest{
		Date: "2025-08-17", Title: "Druga sesja", Content: "Techniki oddechowe", Type: "session",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	note := decode[patients.Note](t, rec)
	assert.Equal(t, "karina", note.AuthorID)

	rec = do(t, h, karinaUser, http.MethodPost, "/admin/patients/"+pid+"/notes", NoteRequest{
		Title: "x", Content: "y", Type: "gossip",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, patientEwa, http.MethodGet, "/admin/patients/"+pid+"/notes", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	edit := NoteRequest{Date: "2025-08-17", Title: "Druga sesja", Content: "Mindfulness", Type: "note"}
	rec = do(t, h, adaUser, http.MethodPut, "/admin/notes/"+note.ID.String(), edit)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(appointment.KindForbidden), decode[ErrorResponse](t, rec).Error)

	rec = do(t, h, karinaUser, http.MethodPut, "/admin/notes/"+note.ID.String(), edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Mindfulness", decode[patients.Note](t, rec).Content)

	rec = do(t, h, adminUser, http.MethodGet, "/admin/patients/"+pid+"/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]patients.Note](t, rec), 1)

	rec = do(t, h, adminUser, http.MethodDelete, "/admin/notes/"+note.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, adminUser, http.MethodDelete, "/admin/notes/"+note.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationEndpoints(t *testing.T) {
	h := newTestRouter(t)
	pid := createEwa(t, h)

	rec := do(t, h, karinaUser, http.MethodPost, "/admin/patients/"+pid+"/recommendations", RecommendationRequest{
		Title: "Ćwiczenia asertywności", Content: "Dziennik sytuacji", Category: "exercise", Priority: "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[patients.Recommendation](t, rec).ID.String()

	rec = do(t, h, patientEwa, http.MethodGet, "/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]patients.Recommendation](t, rec))

	rec = do(t, h, patientEwa, http.MethodPost, "/recommendations/"+id+"/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, karinaUser, http.MethodPost, "/admin/recommendations/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, patientEwa, http.MethodGet, "/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]patients.Recommendation](t, rec), 1)

	rec = do(t, h, patientEwa, http.MethodPost, "/recommendations/"+id+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[patients.Recommendation](t, rec).Read)

	rec = do(t, h, adminUser, http.MethodDelete, "/admin/patients/"+pid, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, adminUser, http.MethodDelete, "/admin/recommendations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "deleting the patient dropped it")
}

func TestReviewEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, patientEwa, http.MethodPost, "/reviews", ReviewRequest{PatientName: "Ewa N.", Rating: 5, Text: "Polecam"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id := decode[reviews.Review](t, rec).ID.String()

	rec = do(t, h, patientEwa, http.MethodPost, "/reviews", ReviewRequest{PatientName: "Ewa N.", Rating: 9, Text: "!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, patientEwa, http.MethodGet, "/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]reviews.Review](t, rec))

	rec = do(t, h, adminUser, http.MethodGet, "/admin/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reviews.Review](t, rec), 1)

	rec = do(t, h, adminUser, http.MethodPost, "/admin/reviews/"+id+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, patientEwa, http.MethodGet, "/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reviews.Review](t, rec), 1)

	rec = do(t, h, adminUser, http.MethodDelete, "/admin/reviews/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateSpecialist(t *testing.T) {
	h := newTestRouter(t)

	body := CreateSpecialistRequest{
		ID:        "marta",
		FirstName: "Marta",
		LastName:  "Wójcik",
		SpecialistRequest: SpecialistRequest{
			Services:        []string{"individual"},
			WorkDays:        []int{1},
			WorkHours:       []string{"08:00", "09:00"},
			OnlineAvailable: true,
		},
	}
	rec := do(t, h, adminUser, http.MethodPost, "/admin/specialists", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, patientEwa, http.MethodGet, "/slots?specialist_id=marta&location=online", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SlotsResponse](t, rec)
	require.NotEmpty(t, resp.Days)
	assert.Equal(t, "2025-08-25", resp.Days[0].Date)

	rec = do(t, h, adminUser, http.MethodPost, "/admin/specialists", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body.ID = "Not Valid"
	rec = do(t, h, adminUser, http.MethodPost, "/admin/specialists", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
