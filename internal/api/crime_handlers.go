package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crimewatch-io/crimewatch/internal/crime"
	"github.com/crimewatch-io/crimewatch/internal/models"
)

type createCrimeResponse struct {
	Crime  models.Crime  `json:"crime"`
	Person models.Person `json:"person"`
}

type listCrimesResponse struct {
	Items      []models.Crime    `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

type updateStatusRequest struct {
	VerificationStatus string `json:"verificationStatus"`
}

// CreateCrimeHandler files a new report.
func (api *Api) CreateCrimeHandler(w http.ResponseWriter, r *http.Request) {
	var input crime.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	c, p, err := api.crimes.CreateWithPerson(input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCrimeResponse{Crime: *c, Person: *p})
}

// CrimesByPersonHandler returns every report filed against the person with
// the given slug.
func (api *Api) CrimesByPersonHandler(w http.ResponseWriter, r *http.Request) {
	_, crimes, err := api.persons.Profile(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if crimes == nil {
		crimes = []models.Crime{}
	}
	writeJSON(w, http.StatusOK, crimes)
}

// ListCrimesHandler returns one page of reports, optionally filtered by
// verification status.
func (api *Api) ListCrimesHandler(w http.ResponseWriter, r *http.Request) {
	crimes, pagination, err := api.crimes.List(r.URL.Query().Get("status"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if crimes == nil {
		crimes = []models.Crime{}
	}
	writeJSON(w, http.StatusOK, listCrimesResponse{Items: crimes, Pagination: pagination})
}

// GetCrimeHandler returns a single report.
func (api *Api) GetCrimeHandler(w http.ResponseWriter, r *http.Request) {
	c, err := api.crimes.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCrimeStatusHandler moves a report through moderation.
func (api *Api) UpdateCrimeStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := api.crimes.UpdateStatus(chi.URLParam(r, "id"), req.VerificationStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCrimeHandler removes a report.
func (api *Api) DeleteCrimeHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.crimes.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Crime deleted"})
}
