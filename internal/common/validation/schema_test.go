package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"title": {Type: "string"},
			"match": {Type: "boolean"},
		},
		Required:             []string{"title", "match"},
		AdditionalProperties: false,
	}
}

func TestValidator_Validate(t *testing.T) {
	v, err := Compile(journalSchema())
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		valid     bool
		badFields []string
	}{
		{
			name:  "valid",
			doc:   map[string]interface{}{"title": "Internet Research", "match": true},
			valid: true,
		},
		{
			name:      "missing field",
			doc:       map[string]interface{}{"title": "Internet Research"},
			badFields: []string{"match"},
		},
		{
			name:      "extra field",
			doc:       map[string]interface{}{"title": "x", "match": false, "score": 3.0},
			badFields: []string{"score"},
		},
		{
			name:      "wrong type",
			doc:       map[string]interface{}{"title": "x", "match": "yes"},
			badFields: []string{"match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.badFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	res, err := ValidateDocument(map[string]interface{}{"title": 1.0, "match": true}, journalSchema())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("title"), 1)
	assert.Equal(t, "INVALID_TYPE", res.Errors[0].Code)
}

func TestGetSchemaFromJSON(t *testing.T) {
	schema, err := GetSchemaFromJSON(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"],"additionalProperties":false}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, schema.Required)
	assert.False(t, schema.AdditionalProperties)
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("http://localhost:8080"))
	assert.True(t, ValidateURL("https://genai.example.com/api"))
	assert.False(t, ValidateURL("localhost:8080"))
}
