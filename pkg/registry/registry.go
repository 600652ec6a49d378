// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

const journalCategoryPrompt = `
<format_instructions>
{format_instructions}
</format_instructions>

<query>
I am a librarian. I need to classify the following journal into a category.

{journal}
</query>
`

const journalJudgePrompt = `
<format_instructions>
{format_instructions}
</format_instructions>

<query>
I am doing research on the topic of "{topic}". Can you help me judge whether the following journal matches my research topic:

{journal}
</query>

<constraints>
1. The journal should be a peer-reviewed journal.
2. The journal should be published in the last 10 years.
3. The journal should be published in the United States.
4. The journal should be published in the field of "{topic}".
5. Match means the journal is relevant to the research topic.
6. Other factors that may affect the match are the journal.
7. Give a reason for your judgement.
</constraints>
`

const cityCountryPrompt = `
<format_instructions>
{format_instructions}
</format_instructions>

<question>
{question}
</question>
`

// Builtin returns the registry used when no registry file is configured.
func Builtin() *ContractRegistry {
	return &ContractRegistry{
		Version: "1.0.0",
		Contracts: []ContractDefinition{
			{
				ID:             "journal-category",
				DisplayName:    "Journal Category",
				Description:    "Classifies a journal title into a subject category",
				Version:        "1.0.0",
				PromptTemplate: journalCategoryPrompt,
				Fields: []Field{
					{Name: "title", Type: "string", Description: "The title of the journal"},
					{Name: "issn", Type: "string", Description: "The ISSN of the journal"},
					{Name: "category", Type: "string", Description: "The category of the journal"},
					{Name: "publisher", Type: "string", Description: "The publisher of the journal"},
				},
				Tags: []string{"journal", "classification"},
			},
			{
				ID:             "journal-judge",
				DisplayName:    "Journal Topic Judge",
				Description:    "Judges whether a journal matches a research topic",
				Version:        "1.0.0",
				PromptTemplate: journalJudgePrompt,
				Fields: []Field{
					{Name: "title", Type: "string", Description: "The title of the journal"},
					{Name: "match", Type: "boolean", Description: "Whether the journal matches the query"},
					{Name: "reason", Type: "string", Description: "The reason for the match or mismatch"},
				},
				Tags: []string{"journal", "judge"},
			},
			{
				ID:             "city-country",
				DisplayName:    "City and Country",
				Description:    "Answers a question with a city and its country",
				Version:        "1.0.0",
				PromptTemplate: cityCountryPrompt,
				Fields: []Field{
					{Name: "city", Type: "string", Description: "The city name"},
					{Name: "country", Type: "string", Description: "The country name"},
				},
				Tags: []string{"geography"},
			},
		},
	}
}

func LoadRegistry(path string) (*ContractRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ContractRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrBuiltin loads path, or returns the built-in registry when path is empty.
func LoadOrBuiltin(path string) (*ContractRegistry, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadRegistry(path)
}

// Find returns the contract with the given ID.
func (r *ContractRegistry) Find(id string) (ContractDefinition, error) {
	for _, c := range r.Contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return ContractDefinition{}, fmt.Errorf("contract %q not found in registry", id)
}

// IDs lists contract IDs in registry order.
func (r *ContractRegistry) IDs() []string {
	ids := make([]string, len(r.Contracts))
	for i, c := range r.Contracts {
		ids[i] = c.ID
	}
	return ids
}
