package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pixshelf/pixshelf-api/internal/application/image"
	"github.com/pixshelf/pixshelf-api/internal/domain"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps a whole multipart upload request.
const maxUploadBytes = 32 << 20 // 32 MiB

// ImageHandler handles the gallery endpoints. All routes sit behind the
// auth middleware, so claims are always present in context.
type ImageHandler struct {
	svc image.Service
}

func NewImageHandler(svc image.Service) *ImageHandler {
	return &ImageHandler{svc: svc}
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	// Accept files under either field name, as gallery clients send both.
	files := append(r.MultipartForm.File["image"], r.MultipartForm.File["images"]...)
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	var titles []string
	if raw := r.FormValue("titles"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &titles); err != nil {
			titles = []string{raw}
		}
	}

	var uploads []image.Upload
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot read file %q", fh.Filename))
			return
		}
		defer f.Close()
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		uploads = append(uploads, image.Upload{
			Title:       title,
			ContentType: fh.Header.Get("Content-Type"),
			Filename:    fh.Filename,
			Data:        f,
		})
	}

	out, err := h.svc.Upload(r.Context(), claims.UserID, uploads)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ImagesEnvelope{
		Success: true,
		Message: fmt.Sprintf("%d image(s) uploaded successfully", len(out)),
		Data:    out,
	})
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	images, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImagesEnvelope{Success: true, Data: images})
}

func (h *ImageHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var orders []domain.ImageOrder
	if err := json.NewDecoder(r.Body).Decode(&orders); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateOrder(r.Context(), claims.UserID, orders); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Image order changed successfully"})
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	imageID := chi.URLParam(r, "id")
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var replacement *image.Upload
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read file")
			return
		}
		defer f.Close()
		replacement = &image.Upload{
			ContentType: files[0].Header.Get("Content-Type"),
			Filename:    files[0].Filename,
			Data:        f,
		}
	}

	img, err := h.svc.Update(r.Context(), claims.UserID, imageID, r.FormValue("title"), replacement)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImagesEnvelope{
		Success: true,
		Message: "Image updated successfully",
		Data:    []domain.Image{*img},
	})
}

// Download streams the object bytes directly, for clients that want the
// file rather than the presigned link.
func (h *ImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rc, _, err := h.svc.Download(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Image deleted successfully"})
}
