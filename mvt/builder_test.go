package mvt

import (
	"context"
	"strings"
	"testing"

	"github.com/DGEXSolutions/chartos/schema"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	return nil
}

type fakeQuerier struct {
	lastSQL  string
	lastArgs []interface{}
	row      fakeRow
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	q.lastSQL = sql
	q.lastArgs = args
	return q.row
}

func testLayerAndView(t *testing.T) (schema.Layer, schema.View) {
	t.Helper()
	cfg, err := schema.Parse(schema.SerializedConfig{
		Name: "c",
		Layers: []schema.SerializedLayer{{
			Name:        "osrd_track_section",
			IDFieldName: "entity_id",
			Fields: []schema.SerializedField{
				{Name: "entity_id", Type: "bigint"},
				{Name: "geom_geo", Type: "geom"},
			},
			Views: []schema.SerializedView{
				{Name: "geo", OnField: "geom_geo"},
			},
		}},
	})
	require.NoError(t, err)
	layer, ok := cfg.Layer("osrd_track_section")
	require.True(t, ok)
	view, ok := layer.View("geo")
	require.True(t, ok)
	return layer, view
}

func TestBuildTileWithoutVersion(t *testing.T) {
	layer, view := testLayerAndView(t)
	q := &fakeQuerier{row: fakeRow{data: []byte("tile-bytes")}}

	data, err := BuildTile(context.Background(), q, layer, view, 14, 8299, 5632, "")
	require.NoError(t, err)
	require.Equal(t, []byte("tile-bytes"), data)
	require.Len(t, q.lastArgs, 3)
	require.NotContains(t, q.lastSQL, `"version" = $4`)
}

func TestBuildTileWithVersion(t *testing.T) {
	layer, view := testLayerAndView(t)
	q := &fakeQuerier{row: fakeRow{data: []byte("tile-bytes")}}

	_, err := BuildTile(context.Background(), q, layer, view, 14, 8299, 5632, "rev1")
	require.NoError(t, err)
	require.Len(t, q.lastArgs, 4)
	require.Equal(t, "rev1", q.lastArgs[3])
	require.Contains(t, q.lastSQL, `"version" = $4`)
	require.True(t, strings.Contains(q.lastSQL, "TileBBox($1, $2, $3, 3857)"))
}

func TestBuildTileScanErrorWrapsStorageError(t *testing.T) {
	layer, view := testLayerAndView(t)
	q := &fakeQuerier{row: fakeRow{err: require.AnError}}

	_, err := BuildTile(context.Background(), q, layer, view, 0, 0, 0, "")
	require.Error(t, err)
}
