package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DGEXSolutions/chartos/cachekey"
	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/tilemath"
)

func tileCacheKey(layer schema.Layer, view schema.View, version string, tile tilemath.Tile) string {
	return cachekey.Key(layer, view, version, tile)
}

func ttlSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func parseZXY(zStr, xStr, yStr string) (z, x, y uint, err error) {
	zi, err := strconv.ParseUint(zStr, 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	xi, err := strconv.ParseUint(xStr, 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	yi, err := strconv.ParseUint(yStr, 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint(zi), uint(xi), uint(yi), nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeTile(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps a chartoserr kind to spec.md §6's HTTP status table: 400
// for ValidationError, 404 for NotFoundError, 500 for everything else.
func writeError(w http.ResponseWriter, err error) {
	var ve *chartoserr.ValidationError
	var nf *chartoserr.NotFoundError
	switch {
	case asValidation(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"details": ve.Details,
			"choices": ve.Choices,
		})
	case asNotFound(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"details": nf.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"details": "internal error"})
	}
}
