package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
)

// maxRequestBodyBytes bounds every request body the router reads into
// memory before parsing, independent of the narrower per-field limits
// (terminal input's 128 KiB, chunk reads' 1 MiB) individual handlers apply.
const maxRequestBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apierr.BadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := apierr.StatusOf(err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
