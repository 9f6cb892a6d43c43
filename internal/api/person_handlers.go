package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crimewatch-io/crimewatch/internal/models"
)

type feedResponse struct {
	Items      []models.PersonFeedItem `json:"items"`
	Pagination models.Pagination       `json:"pagination"`
}

type profileResponse struct {
	Person models.Person  `json:"person"`
	Crimes []models.Crime `json:"crimes"`
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// PersonFeedHandler returns one page of the public landing feed.
func (api *Api) PersonFeedHandler(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := api.persons.Feed(queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Items: items, Pagination: pagination})
}

// PersonProfileHandler returns a person and all crimes reported against them.
func (api *Api) PersonProfileHandler(w http.ResponseWriter, r *http.Request) {
	p, crimes, err := api.persons.Profile(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if crimes == nil {
		crimes = []models.Crime{}
	}
	writeJSON(w, http.StatusOK, profileResponse{Person: *p, Crimes: crimes})
}

// PersonByIDHandler is PersonProfileHandler keyed by ID instead of slug.
func (api *Api) PersonByIDHandler(w http.ResponseWriter, r *http.Request) {
	p, crimes, err := api.persons.ProfileByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if crimes == nil {
		crimes = []models.Crime{}
	}
	writeJSON(w, http.StatusOK, profileResponse{Person: *p, Crimes: crimes})
}

// DeletePersonHandler removes a person and their crimes.
func (api *Api) DeletePersonHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.persons.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Person deleted"})
}
