package schema

import (
	"fmt"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
)

const defaultCacheDurationSeconds = 3600

// View = {name, on_field, fields, cache_duration_seconds}, per spec.md §3.
type View struct {
	Name                 string
	OnField              Field
	Fields               []Field
	CacheDurationSeconds int
}

// parseView resolves a SerializedView against its parent layer's fields,
// applying spec.md §3's view resolution rules: explicit `fields` wins;
// otherwise all layer fields in insertion order; `exclude_fields` is then
// removed, preserving order.
func parseView(layerFields []Field, fieldsByName map[string]Field, raw SerializedView) (View, error) {
	onField, ok := fieldsByName[raw.OnField]
	if !ok {
		return View{}, &chartoserr.SchemaError{
			Reason: fmt.Sprintf("view %q: on_field %q not found in layer", raw.Name, raw.OnField),
		}
	}
	if !onField.IsGeom() {
		return View{}, &chartoserr.SchemaError{
			Reason: fmt.Sprintf("view %q: on_field %q is not a geom field", raw.Name, raw.OnField),
		}
	}

	var names []string
	if raw.Fields != nil {
		names = append(names, raw.Fields...)
	} else {
		for _, f := range layerFields {
			names = append(names, f.Name)
		}
	}

	if raw.ExcludeFields != nil {
		excluded := make(map[string]bool, len(raw.ExcludeFields))
		for _, n := range raw.ExcludeFields {
			excluded[n] = true
		}
		filtered := names[:0:0]
		for _, n := range names {
			if !excluded[n] {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}

	fields := make([]Field, 0, len(names))
	for _, n := range names {
		f, ok := fieldsByName[n]
		if !ok {
			return View{}, &chartoserr.SchemaError{
				Reason: fmt.Sprintf("view %q: field %q not found in layer", raw.Name, n),
			}
		}
		fields = append(fields, f)
	}

	cacheDuration := defaultCacheDurationSeconds
	if raw.CacheDuration != nil {
		cacheDuration = *raw.CacheDuration
	}

	return View{
		Name:                 raw.Name,
		OnField:              onField,
		Fields:               fields,
		CacheDurationSeconds: cacheDuration,
	}, nil
}
