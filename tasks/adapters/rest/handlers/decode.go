package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"taskboard/tasks/pkg/res"
)

// decodeJSON reads exactly one JSON value from the body into v. On failure it
// writes the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)

	err := dec.Decode(v)
	if err == nil {
		// anything after the first value is garbage
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return true
		}
		if err == nil {
			err = errors.New("trailing data")
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		res.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	res.Error(w, "invalid json", http.StatusBadRequest)
	return false
}
