package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ghdrop/service/internal/response"
)

// FormField is the multipart field carrying the uploaded file.
const FormField = "file"

const (
	msgNoFile       = "No file found in form data."
	msgUploadFailed = "Upload failed on server."
)

var errNoFile = errors.New("no file found in form data")

// Handler dispatches requests to the upload endpoint by method.
type Handler struct {
	svc       *Service
	fallback  http.Handler
	maxMemory int64
	logger    log.Logger
}

// NewHandler creates a new upload Handler. Requests that are neither POST
// nor OPTIONS go to fallback, or get 405 when fallback is nil.
func NewHandler(svc *Service, fallback http.Handler, maxMemory int64, logger log.Logger) *Handler {
	return &Handler{svc: svc, fallback: fallback, maxMemory: maxMemory, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.AllowAnyOrigin(w)

	switch r.Method {
	case http.MethodOptions:
		h.Preflight(w, r)
	case http.MethodPost:
		h.Upload(w, r)
	default:
		if h.fallback != nil {
			h.fallback.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods)
		response.MethodNotAllowed(w)
	}
}

// Preflight godoc
//
//	@Summary		CORS preflight
//	@Description	Answers the browser preflight sent before a cross-origin upload.
//	@Tags			upload
//	@Param			Origin							header	string	false	"Request origin"
//	@Param			Access-Control-Request-Method	header	string	false	"Method of the actual request"
//	@Param			Access-Control-Request-Headers	header	string	false	"Headers of the actual request"
//	@Success		200
//	@Router			/upload [options]
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	writePreflight(w, r)
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Commits the multipart field "file" to the content store under uploads/ and returns its public URL.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	response.AllowAnyOrigin(w)

	f, err := h.readFile(r)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	url, err := h.svc.Upload(r.Context(), f)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	response.OK(w, fmt.Sprintf("File uploaded successfully to %s!", h.svc.StoreLabel()), url)
}

// writeFailure maps an upload error onto the JSON envelope.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var upErr *Error
	if !errors.As(err, &upErr) {
		upErr = fail(KindUnexpected, err)
	}

	switch upErr.Kind {
	case KindClientInput:
		response.BadRequest(w, msgNoFile)
	case KindConfiguration:
		response.InternalError(w,
			fmt.Sprintf("Server configuration error: Missing %s credentials.", h.svc.StoreLabel()), "")
	default:
		level.Error(h.logger).Log("method", "Upload", "kind", upErr.Kind, "err", upErr)
		response.Error(w, upErr.Kind.Status(), msgUploadFailed, upErr.Error())
	}
}

// readFile extracts the form field "file" into memory.
func (h *Handler) readFile(r *http.Request) (File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxMemory); err != nil {
			// A body without a single boundary is an empty form.
			if errors.Is(err, io.EOF) {
				return File{}, fail(KindClientInput, errNoFile)
			}
			return File{}, fail(KindUnexpected, fmt.Errorf("parse multipart form: %w", err))
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return File{}, fail(KindUnexpected, fmt.Errorf("parse form: %w", err))
		}
		return File{}, fail(KindClientInput, errNoFile)
	default:
		if r.ContentLength == 0 {
			return File{}, fail(KindClientInput, errNoFile)
		}
		return File{}, fail(KindUnexpected, fmt.Errorf("unsupported content type %q", r.Header.Get("Content-Type")))
	}

	file, header, err := r.FormFile(FormField)
	if errors.Is(err, http.ErrMissingFile) {
		return File{}, fail(KindClientInput, errNoFile)
	}
	if err != nil {
		return File{}, fail(KindUnexpected, fmt.Errorf("open form file: %w", err))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return File{}, fail(KindUnexpected, fmt.Errorf("read form file: %w", err))
	}

	return File{Name: header.Filename, Content: content}, nil
}
