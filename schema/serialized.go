package schema

// SerializedField, SerializedView, SerializedLayer and SerializedConfig
// mirror the YAML document shape of spec.md §6, 1:1 with
// chartos/serialized_config.py's pydantic models.
type SerializedField struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
}

type SerializedView struct {
	Name          string   `yaml:"name"`
	OnField       string   `yaml:"on_field"`
	Fields        []string `yaml:"fields,omitempty"`
	ExcludeFields []string `yaml:"exclude_fields,omitempty"`
	CacheDuration *int     `yaml:"cache_duration,omitempty"`
}

type SerializedLayer struct {
	Name          string            `yaml:"name"`
	IDFieldName   string            `yaml:"id_field_name"`
	Description   string            `yaml:"description,omitempty"`
	Attribution   string            `yaml:"attribution,omitempty"`
	Fields        []SerializedField `yaml:"fields"`
	Views         []SerializedView  `yaml:"views"`
}

type SerializedConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Layers      []SerializedLayer `yaml:"layers"`
}
