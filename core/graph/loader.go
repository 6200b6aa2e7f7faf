package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadEdgeList parses a tab- or whitespace-separated edge list. Lines
// starting with '#' and blank lines are skipped; only the first two
// fields of each line are used.
func ReadEdgeList(r io.Reader) ([]Edge, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var edges []Edge
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("edge list line %d: expected two fields, got %q", line, text)
		}
		edges = append(edges, Edge{A: fields[0], B: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading edge list: %w", err)
	}
	return edges, nil
}

// LoadEdgeList reads an edge-list file and builds the graph.
func LoadEdgeList(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edge list: %w", err)
	}
	defer f.Close()

	edges, err := ReadEdgeList(f)
	if err != nil {
		return nil, err
	}
	return New(edges)
}
