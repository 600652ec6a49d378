// pkg/registry/schema.go
package registry

// ContractRegistry lists the response contracts a run can select from.
type ContractRegistry struct {
	Version     string               `json:"version"`
	LastUpdated string               `json:"lastUpdated"`
	Contracts   []ContractDefinition `json:"contracts"`
}

// ContractDefinition declares the fields a model reply must carry and the
// prompt that asks for them.
type ContractDefinition struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"displayName"`
	Description    string   `json:"description"`
	Version        string   `json:"version"`
	PromptTemplate string   `json:"promptTemplate"`
	Fields         []Field  `json:"fields"`
	Tags           []string `json:"tags"`
}

// Field is one declared reply field. Type is one of string, boolean,
// number or integer; empty means string.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
}
