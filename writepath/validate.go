package writepath

import (
	"fmt"
	"sort"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
)

// Validate rejects rows whose keys aren't a subset of the layer's field
// names, and enforces the mandatory-field rules of spec.md §4.8: id_field is
// always required, and insert additionally requires every view's on_field.
func Validate(layer schema.Layer, changeType ChangeType, rows []Row) error {
	validNames := make(map[string]bool, len(layer.Fields))
	for _, f := range layer.Fields {
		validNames[f.Name] = true
	}
	choices := make([]string, 0, len(validNames))
	for n := range validNames {
		choices = append(choices, n)
	}
	sort.Strings(choices)

	mandatory := map[string]bool{layer.IDField.Name: true}
	if changeType == Insert {
		for _, v := range layer.Views {
			mandatory[v.OnField.Name] = true
		}
	}

	for _, row := range rows {
		for name := range row {
			if !validNames[name] {
				return &chartoserr.ValidationError{
					Details: fmt.Sprintf("unknown field name %q", name),
					Choices: choices,
				}
			}
		}
		for name := range mandatory {
			if _, ok := row[name]; !ok {
				rowKeys := make([]string, 0, len(row))
				for k := range row {
					rowKeys = append(rowKeys, k)
				}
				sort.Strings(rowKeys)
				return &chartoserr.ValidationError{
					Details: fmt.Sprintf("key %q is required but not found", name),
					Choices: rowKeys,
				}
			}
		}
	}
	return nil
}
