package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/mvt"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/tilemath"
	"github.com/DGEXSolutions/chartos/writepath"
	"github.com/dimfeld/httptreemux/v5"
)

func params(r *http.Request) map[string]string {
	return httptreemux.ContextParams(r.Context())
}

// handleHealth pings both backends, per the supplemented /health semantics:
// chartos/views.py's health route issues `select 1` against Postgres and a
// PING against Redis before responding.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := s.DB.QueryRow(r.Context(), "SELECT 1").Scan(&one); err != nil {
		s.Log.WithError(err).Error("health check: postgres ping failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if err := s.Redis.Ping(r.Context()).Err(); err != nil {
		s.Log.WithError(err).Error("health check: redis ping failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type infoLayer struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Versioned   bool     `json:"versioned"`
	Views       []string `json:"views"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	layers := make([]infoLayer, 0, len(s.Config.Layers))
	for _, l := range s.Config.Layers {
		layers = append(layers, infoLayer{
			Name:        l.Name,
			Description: l.Description,
			Versioned:   true,
			Views:       l.ViewNames(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		s.Config.Name: map[string]interface{}{"layers": layers},
	})
}

type mvtMetadata struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	PromoteID   map[string]string `json:"promoteId"`
	Scheme      string            `json:"scheme"`
	Tiles       []string          `json:"tiles"`
	Attribution string            `json:"attribution"`
	MinZoom     uint              `json:"minzoom"`
	MaxZoom     uint              `json:"maxzoom"`
}

func (s *Server) handleMVTMetadata(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	layer, _, err := s.resolveLayerView(p["layer"], p["view"])
	if err != nil {
		writeError(w, err)
		return
	}
	version := r.URL.Query().Get("version")

	tilesURL := s.RootURL + "/tile/" + p["layer"] + "/" + p["view"] +
		"/{z}/{x}/{y}/?version=" + url.QueryEscape(version)

	writeJSON(w, http.StatusOK, mvtMetadata{
		Type:        "vector",
		Name:        layer.Name,
		PromoteID:   map[string]string{layer.Name: layer.IDField.Name},
		Scheme:      "xyz",
		Tiles:       []string{tilesURL},
		Attribution: layer.Attribution,
		MinZoom:     0,
		MaxZoom:     s.MaxZoom,
	})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	layer, view, err := s.resolveLayerView(p["layer"], p["view"])
	if err != nil {
		writeError(w, err)
		return
	}

	z, x, y, err := parseZXY(p["z"], p["x"], p["y"])
	if err != nil {
		writeError(w, &chartoserr.ValidationError{Details: err.Error()})
		return
	}
	version := r.URL.Query().Get("version")
	key := tileCacheKey(layer, view, version, tilemath.Tile{Z: z, X: x, Y: y})

	ctx := r.Context()
	if cached, err := s.Cache.Get(ctx, key); err != nil {
		s.Log.WithError(err).Warn("tile cache get failed, falling back to SQL")
	} else if cached != nil {
		writeTile(w, cached)
		return
	}

	data, err := mvt.BuildTile(ctx, s.DB, layer, view, z, x, y, version)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.Cache.Put(ctx, key, data, ttlSeconds(view.CacheDurationSeconds)); err != nil {
		s.Log.WithError(err).Warn("tile cache put failed")
	}
	writeTile(w, data)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	p := params(r)
	layer, ok := s.Config.Layer(p["layer"])
	if !ok {
		// Unlike the tile route, push has no 404 case (spec.md §6): the
		// Python original's push() indexes config.layers[layer_slug]
		// unguarded, so an unknown layer surfaces as an uncaught KeyError,
		// i.e. a framework 500 — not a tagged NotFoundError.
		writeError(w, fmt.Errorf("push: layer %q not found", p["layer"]))
		return
	}
	version := r.URL.Query().Get("version")

	if p["change"] == "truncate" {
		result, err := s.WritePath.Truncate(r.Context(), layer, version)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"impacted_tiles": result.ImpactedTiles})
		return
	}

	var changeType writepath.ChangeType
	switch p["change"] {
	case "insert":
		changeType = writepath.Insert
	case "update":
		changeType = writepath.Update
	case "delete":
		changeType = writepath.Delete
	default:
		writeError(w, &chartoserr.ValidationError{Details: "unknown change type " + p["change"]})
		return
	}

	var rows []writepath.Row
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, &chartoserr.ValidationError{Details: "invalid JSON body: " + err.Error()})
		return
	}

	result, err := s.WritePath.Apply(r.Context(), writepath.Request{
		Layer:      layer,
		Version:    version,
		ChangeType: changeType,
		Rows:       rows,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"impacted_tiles": result.ImpactedTiles})
}

func (s *Server) resolveLayerView(layerName, viewName string) (layer schema.Layer, view schema.View, err error) {
	l, ok := s.Config.Layer(layerName)
	if !ok {
		return layer, view, &chartoserr.NotFoundError{Kind: "layer", Name: layerName}
	}
	v, ok := l.View(viewName)
	if !ok {
		return layer, view, &chartoserr.NotFoundError{Kind: "view", Name: viewName}
	}
	return l, v, nil
}
