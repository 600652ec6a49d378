package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "contracts.json")
	var out bytes.Buffer

	require.NoError(t, run([]string{"init", "-path", path}, &out))
	assert.Contains(t, out.String(), "Wrote 3 contracts")

	out.Reset()
	require.NoError(t, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "Found 3 contracts")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: `{"version":"1","contracts":[]}`},
		{name: "duplicate", body: `{"contracts":[
			{"id":"a","promptTemplate":"{format_instructions} {journal}","fields":[{"name":"x"}]},
			{"id":"a","promptTemplate":"{format_instructions} {journal}","fields":[{"name":"x"}]}]}`},
		{name: "bad type", body: `{"contracts":[{"id":"a","promptTemplate":"{format_instructions} {journal}","fields":[{"name":"x","type":"date"}]}]}`},
		{name: "no instructions", body: `{"contracts":[{"id":"a","promptTemplate":"{journal}","fields":[{"name":"x"}]}]}`},
		{name: "no input", body: `{"contracts":[{"id":"a","promptTemplate":"{format_instructions}","fields":[{"name":"x"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "contracts.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			assert.Error(t, run([]string{"validate", "-path", path}, &bytes.Buffer{}))
		})
	}
}

func TestDescribe(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"describe", "-id", "journal-judge", "-topic", "IBD", "-text", "Internet Research"}, &out))

	s := out.String()
	assert.Contains(t, s, "Contract: journal-judge")
	assert.Contains(t, s, `"additionalProperties": false`)
	assert.Contains(t, s, `research on the topic of "IBD"`)
	assert.Contains(t, s, "Internet Research")

	assert.Error(t, run([]string{"describe", "-id", "journal-judge"}, &bytes.Buffer{}), "topic required")
}

func TestList_AndUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"list"}, &out))
	assert.Contains(t, out.String(), "city-country")

	assert.Error(t, run([]string{"frobnicate"}, &bytes.Buffer{}))
	assert.Error(t, run(nil, &bytes.Buffer{}))
}
