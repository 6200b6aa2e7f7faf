package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/transcription"
)

// loadModules reads a YAML file mapping module names to gene lists.
func loadModules(path string) (map[string]*graph.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading modules: %w", err)
	}
	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing modules: %w", err)
	}
	modules := make(map[string]*graph.Module, len(raw))
	for name, members := range raw {
		modules[name] = graph.NewModule(name, members)
	}
	return modules, nil
}

// loadDrugSignatures reads a YAML file mapping drug names to up/down
// gene sets.
func loadDrugSignatures(path string) (map[string]transcription.DrugSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading drug signatures: %w", err)
	}
	raw := make(map[string]struct {
		Up   []string `yaml:"up"`
		Down []string `yaml:"down"`
	})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing drug signatures: %w", err)
	}
	sigs := make(map[string]transcription.DrugSignature, len(raw))
	for name, s := range raw {
		sigs[name] = transcription.DrugSignature{Up: s.Up, Down: s.Down}
	}
	return sigs, nil
}

// loadSignature reads a two-column TSV of gene and fold change.
func loadSignature(path string) (transcription.Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	defer f.Close()

	sig := make(transcription.Signature)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("signature line %d: expected gene and fold change, got %q", line, text)
		}
		fc, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("signature line %d: %w", line, err)
		}
		sig[fields[0]] = fc
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	return sig, nil
}
