package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/service"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

// maxUploadMemory caps multipart form memory; larger files spill to disk.
const maxUploadMemory = 32 << 20

type HTTPHandler struct {
	inventory *service.InventoryService
	documents *service.DocumentService
	logger    zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type resultResponse struct {
	Result string `json:"result"`
}

func NewHTTPHandler(inventory *service.InventoryService, documents *service.DocumentService, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, documents: documents, logger: logger}
}

// Routes registers every endpoint on a fresh mux wrapped with request
// logging.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("POST /items/{item_name}/{quantity}", h.AddItem)
	mux.HandleFunc("GET /items", h.ListItems)
	mux.HandleFunc("GET /items/{item_id}", h.GetItem)
	mux.HandleFunc("DELETE /items/{item_id}", h.DeleteItem)
	mux.HandleFunc("DELETE /items/{item_id}/{quantity}", h.RemoveQuantity)
	mux.HandleFunc("POST /upload-pdf/{$}", h.UploadPDF)
	mux.HandleFunc("GET /pdfs/{$}", h.ListPDFs)
	mux.HandleFunc("GET /pdfs/{filename}", h.GetPDF)

	return h.withRequestLog(mux)
}

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("item_name")
	quantity, err := strconv.Atoi(r.PathValue("quantity"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity must be an integer"})
		return
	}

	item, err := h.inventory.AddItem(r.Context(), name, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]domain.Item{"item": item})
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("item_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "item id must be an integer"})
		return
	}

	item, err := h.inventory.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]domain.Item{"item": item})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListItems(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}

	writeJSON(w, http.StatusOK, map[string][]domain.Item{"items": items})
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("item_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "item id must be an integer"})
		return
	}

	if err := h.inventory.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{Result: "Item deleted."})
}

func (h *HTTPHandler) RemoveQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("item_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "item id must be an integer"})
		return
	}
	quantity, err := strconv.Atoi(r.PathValue("quantity"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity must be an integer"})
		return
	}

	deleted, err := h.inventory.RemoveQuantity(r.Context(), id, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if deleted {
		writeJSON(w, http.StatusOK, resultResponse{Result: "Item deleted."})
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: fmt.Sprintf("%d items removed.", quantity)})
}

func (h *HTTPHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	result, err := h.documents.ProcessUpload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) ListPDFs(w http.ResponseWriter, r *http.Request) {
	results, err := h.documents.ListResults(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.ClassificationResult{}
	}

	writeJSON(w, http.StatusOK, map[string][]domain.ClassificationResult{"pdfs": results})
}

func (h *HTTPHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	result, err := h.documents.GetResult(r.Context(), r.PathValue("filename"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		status = http.StatusBadRequest
		message = "Quantity must be greater than 0."
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
		message = "Not found."
	case errors.Is(err, service.ErrUnsupportedMediaType):
		status = http.StatusBadRequest
		message = "File must be a PDF"
	case errors.Is(err, port.ErrExtraction):
		status = http.StatusBadRequest
		message = "Could not extract text from PDF"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
