// Package contract turns a declared list of reply fields into the format
// instructions sent to the model and the parser applied to its reply.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/validation"
	"journal-classifier/internal/models"
	"journal-classifier/pkg/registry"
)

var supportedTypes = map[string]bool{
	"string":  true,
	"boolean": true,
	"number":  true,
	"integer": true,
}

// Contract is immutable after New and safe for concurrent use.
type Contract struct {
	id             string
	promptTemplate string
	fields         []registry.Field
	schema         validation.JSONSchema
	validator      *validation.Validator
	instructions   string
}

// New compiles a contract definition. Field names must be unique and non-empty.
func New(def registry.ContractDefinition) (*Contract, error) {
	if len(def.Fields) == 0 {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q declares no fields", def.ID))
	}

	fields := make([]registry.Field, len(def.Fields))
	seen := make(map[string]bool, len(def.Fields))
	schema := validation.JSONSchema{
		Type:                 "object",
		Properties:           make(map[string]validation.Property, len(def.Fields)),
		Required:             make([]string, 0, len(def.Fields)),
		AdditionalProperties: false,
	}

	for i, f := range def.Fields {
		if f.Name == "" {
			return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: field %d has no name", def.ID, i))
		}
		if seen[f.Name] {
			return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: duplicate field %q", def.ID, f.Name))
		}
		seen[f.Name] = true

		if f.Type == "" {
			f.Type = "string"
		}
		if !supportedTypes[f.Type] {
			return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: field %q has unsupported type %q", def.ID, f.Name, f.Type))
		}
		fields[i] = f
		schema.Properties[f.Name] = validation.Property{Type: f.Type, Description: f.Description}
		schema.Required = append(schema.Required, f.Name)
	}

	validator, err := validation.Compile(schema)
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: %v", def.ID, err))
	}

	c := &Contract{
		id:             def.ID,
		promptTemplate: def.PromptTemplate,
		fields:         fields,
		schema:         schema,
		validator:      validator,
	}
	c.instructions = c.render()
	return c, nil
}

// FromRegistry looks up id in reg and compiles it.
func FromRegistry(reg *registry.ContractRegistry, id string) (*Contract, error) {
	def, err := reg.Find(id)
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err.Error())
	}
	return New(def)
}

func (c *Contract) ID() string { return c.id }

func (c *Contract) PromptTemplate() string { return c.promptTemplate }

// Fields returns the declared fields in order.
func (c *Contract) Fields() []registry.Field {
	out := make([]registry.Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// JSONSchema is the schema replies are validated against.
func (c *Contract) JSONSchema() validation.JSONSchema { return c.schema }

// Describe returns the format instructions embedded in every prompt.
func (c *Contract) Describe() string { return c.instructions }

func (c *Contract) render() string {
	var b strings.Builder
	b.WriteString("The output should be a markdown code snippet formatted in the following schema, ")
	b.WriteString("including the leading and trailing \"```json\" and \"```\":\n\n")
	b.WriteString("```json\n{\n")
	for _, f := range c.fields {
		fmt.Fprintf(&b, "\t%q: %s  // %s\n", f.Name, f.Type, f.Description)
	}
	b.WriteString("}\n```")
	return b.String()
}

// Empty is the fallback result: every declared field set to "".
func (c *Contract) Empty() models.Result {
	values := make([]models.FieldValue, len(c.fields))
	for i, f := range c.fields {
		values[i] = models.FieldValue{Name: f.Name, Value: ""}
	}
	return models.NewResult(values)
}

// Parse decodes a model reply into a Result carrying exactly the declared
// fields. Any mismatch is a PARSE_ERROR.
func (c *Contract) Parse(raw string) (models.Result, error) {
	body, ok := extractObject(raw)
	if !ok {
		return models.Result{}, apperrors.NewParseError("reply contains no JSON object", nil)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return models.Result{}, apperrors.NewParseError("reply is not a valid JSON object", err)
	}

	res, err := c.validator.Validate(doc)
	if err != nil {
		return models.Result{}, apperrors.NewParseError("reply could not be validated", err)
	}
	if !res.Valid {
		return models.Result{}, apperrors.NewParseError(strings.Join(res.GetErrorMessages(), "; "), nil).
			WithMetadata(map[string]interface{}{"errors": res.Errors})
	}

	values := make([]models.FieldValue, len(c.fields))
	for i, f := range c.fields {
		values[i] = models.FieldValue{Name: f.Name, Value: doc[f.Name]}
	}
	return models.NewResult(values), nil
}

// extractObject prefers a fenced ```json block and falls back to the
// outermost braces.
func extractObject(raw string) (string, bool) {
	text := strings.TrimSpace(raw)

	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		rest := text[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		inner := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(inner, "{") {
			return inner, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
