// Package writepath implements the VALIDATE -> TRANSLATE -> FETCH_OLD_GEOM
// -> EXECUTE -> INVALIDATE -> REPORT state machine of spec.md §4.8, grounded
// on chartos/modify.py and chartos/truncate.py.
package writepath

import (
	"encoding/json"

	"github.com/DGEXSolutions/chartos/schema"
)

// ChangeType is the kind of write a push request applies.
type ChangeType string

const (
	Insert ChangeType = "insert"
	Update ChangeType = "update"
	Delete ChangeType = "delete"
)

// Row is one payload entry: field name to its still-encoded JSON value, kept
// raw so each field can be decoded according to its declared type.
type Row map[string]json.RawMessage

// Request is one push call: a layer, the version cohort it targets, the
// kind of change, and the rows to apply.
type Request struct {
	Layer      schema.Layer
	Version    string
	ChangeType ChangeType
	Rows       []Row
}

// Result is returned to the HTTP facade for the `{impacted_tiles: ...}`
// response body. Each value is either a []TileCoord (insert/update/delete)
// or the one-element []string{"*"} (truncate), matching the two response shapes
// of spec.md §4.8.
type Result struct {
	ImpactedTiles map[string]interface{}
}

// TileCoord is the JSON-shaped {z,x,y} tuple spec.md §4.8's example reports
// under impacted_tiles.
type TileCoord struct {
	Z uint `json:"z"`
	X uint `json:"x"`
	Y uint `json:"y"`
}
