// cmd/tools/contract-registry/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"journal-classifier/internal/contract"
	"journal-classifier/internal/prompt"
	"journal-classifier/pkg/registry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	describeCmd := flag.NewFlagSet("describe", flag.ContinueOnError)
	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	initCmd := flag.NewFlagSet("init", flag.ContinueOnError)

	validatePath := validateCmd.String("path", "configs/contracts.json", "Path to registry file")

	describePath := describeCmd.String("path", "", "Path to registry file (default: built-in contracts)")
	describeID := describeCmd.String("id", "journal-category", "Contract ID")
	describeTopic := describeCmd.String("topic", "", "Value for {topic} in the sample prompt")
	describeText := describeCmd.String("text", "Journal of Foo", "Sample input text")

	listPath := listCmd.String("path", "", "Path to registry file (default: built-in contracts)")

	initPath := initCmd.String("path", "configs/contracts.json", "Where to write the built-in registry")

	if len(args) < 1 {
		help(out)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "validate":
		if err := validateCmd.Parse(args[1:]); err != nil {
			return err
		}
		return validateRegistry(*validatePath, out)

	case "describe":
		if err := describeCmd.Parse(args[1:]); err != nil {
			return err
		}
		return describeContract(*describePath, *describeID, *describeTopic, *describeText, out)

	case "list":
		if err := listCmd.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadOrBuiltin(*listPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		for _, c := range reg.Contracts {
			fmt.Fprintf(out, "%-20s %s\n", c.ID, c.Description)
		}
		return nil

	case "init":
		if err := initCmd.Parse(args[1:]); err != nil {
			return err
		}
		reg := registry.Builtin()
		reg.LastUpdated = time.Now().Format(time.RFC3339)
		if err := saveRegistry(reg, *initPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d contracts to %s\n", len(reg.Contracts), *initPath)
		return nil

	case "help":
		help(out)
		return nil

	default:
		help(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// validateRegistry compiles every contract and checks its prompt template.
func validateRegistry(path string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Contracts) == 0 {
		return fmt.Errorf("registry contains no contracts")
	}

	ids := make(map[string]bool)
	for _, def := range reg.Contracts {
		if def.ID == "" {
			return fmt.Errorf("contract missing required field: ID")
		}
		if ids[def.ID] {
			return fmt.Errorf("duplicate contract ID: %s", def.ID)
		}
		ids[def.ID] = true

		if _, err := contract.New(def); err != nil {
			return fmt.Errorf("contract %s: %w", def.ID, err)
		}
		tpl, err := prompt.New(def.PromptTemplate)
		if err != nil {
			return fmt.Errorf("contract %s: %w", def.ID, err)
		}
		vars := tpl.Variables()
		if !contains(vars, prompt.VarFormatInstructions) {
			return fmt.Errorf("contract %s: prompt template has no {%s} placeholder", def.ID, prompt.VarFormatInstructions)
		}
		if !contains(vars, prompt.VarJournal) && !contains(vars, prompt.VarQuestion) {
			return fmt.Errorf("contract %s: prompt template has no input placeholder", def.ID)
		}
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d contracts.\n", len(reg.Contracts))
	return nil
}

func describeContract(path, id, topic, text string, out io.Writer) error {
	reg, err := registry.LoadOrBuiltin(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	c, err := contract.FromRegistry(reg, id)
	if err != nil {
		return err
	}
	tpl, err := prompt.New(c.PromptTemplate())
	if err != nil {
		return err
	}
	vars := map[string]string{
		prompt.VarFormatInstructions: c.Describe(),
		prompt.VarJournal:            text,
		prompt.VarQuestion:           text,
	}
	if topic != "" {
		vars[prompt.VarTopic] = topic
	}
	rendered, err := tpl.Render(vars)
	if err != nil {
		return err
	}

	schema, err := json.MarshalIndent(c.JSONSchema(), "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Contract: %s\n\n", c.ID())
	fmt.Fprintf(out, "JSON Schema:\n%s\n\n", schema)
	fmt.Fprintf(out, "Sample prompt:\n%s\n", strings.TrimSpace(rendered))
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.ContractRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: contract-registry <command> [flags]

Commands:
  validate  Compile every contract in a registry file
  describe  Print a contract's schema and a rendered sample prompt
  list      List contract IDs
  init      Write the built-in contracts to a registry file
  help      Show this help message

Examples:
  contract-registry validate -path configs/contracts.json
  contract-registry describe -id journal-judge -topic IBD -text "Internet Research"
  contract-registry init -path configs/contracts.json

Use 'contract-registry <command> -h' for more information about a command.`)
}
