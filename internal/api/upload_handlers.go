package api

import (
	"net/http"
	"strings"
)

// 10 MiB per image upload.
const maxUploadBytes = 10 << 20

// UploadHandler stores one evidence image and returns its public URL.
// Multipart fields: file, personName, imageType ("person" or "crimes").
func (api *Api) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if api.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid multipart form"})
		return
	}

	personName := strings.TrimSpace(r.FormValue("personName"))
	if personName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "personName is required"})
		return
	}

	kind := r.FormValue("imageType")
	if kind != "person" && kind != "crimes" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "imageType must be \"person\" or \"crimes\""})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file is required"})
		return
	}
	defer file.Close()

	result, err := api.uploads.UploadEvidence(r.Context(), personName, kind, header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
