package export

// IncidentJSONSchema describes one element of the JSON export.
var IncidentJSONSchema = map[string]any{
	"$schema":              "http://json-schema.org/draft-07/schema#",
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"incident_time", "incident_number", "incident_location", "nature", "incident_ori"},
	"properties": map[string]any{
		"incident_time": map[string]any{
			"type":    "string",
			"pattern": `^\d+/\d+/\d+\s\d+:\d+$`,
		},
		"incident_number":   map[string]any{"type": "string", "minLength": 1, "pattern": `^\S+$`},
		"incident_location": map[string]any{"type": "string"},
		"nature":            map[string]any{"type": "string"},
		"incident_ori":      map[string]any{"type": "string", "minLength": 1, "pattern": `^\S+$`},
	},
}
