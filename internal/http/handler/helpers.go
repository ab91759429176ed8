package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/inventory-crud-api/internal/http/response"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errInvalidBody  = errors.New("invalid request body")
)

// pathID returns the {id} URL parameter. Anything other than a positive
// decimal integer reports ok=false.
func pathID(r *http.Request) (uint, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" || strings.HasPrefix(raw, "+") {
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// decodeBody reads a JSON object into dst. An empty body leaves dst untouched
// so the caller's required-field validation reports what is missing.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return errInvalidBody
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		response.Error(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	response.Error(w, r, http.StatusBadRequest, "Invalid request body")
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
