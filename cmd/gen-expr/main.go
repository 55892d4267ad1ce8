package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Generates expression documents used by the examples and for stress
// testing the decoder and engine at depths native recursion cannot survive.
func main() {
	targetDir := "examples/documents"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}
	depth := 50000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		check(err)
		depth = n
	}

	// Ensure dir exists
	check(os.MkdirAll(targetDir, 0755))

	fmt.Printf("Generating expression documents in: %s\n", targetDir)

	// 1. Golden (the worked example from the docs; evaluates to 30)
	writeDoc(targetDir, "golden.json", `{"mul": [{"sub": [5, 3]}, {"add": [3, 12]}]}`+"\n")

	// 2. Chain (left-leaning skewer; evaluates to depth+1)
	// Deep enough to blow a recursive encoder, so it is assembled textually.
	var b strings.Builder
	b.Grow(14*depth + 2)
	b.WriteString(strings.Repeat(`{"add": [1, `, depth))
	b.WriteString("1")
	b.WriteString(strings.Repeat("]}", depth))
	b.WriteString("\n")
	writeDoc(targetDir, "chain.json", b.String())
	fmt.Printf("chain.json nests %d levels, evaluates to %d\n", depth, depth+1)

	// 3. Balanced (full binary tree of ones; evaluates to 1024)
	data, err := json.MarshalIndent(balancedDoc(10), "", "  ")
	check(err)
	writeDoc(targetDir, "balanced.json", string(data)+"\n")

	fmt.Println("Done. Verify contents in", targetDir)
}

// balancedDoc builds a full addition tree bottom-up, combining pairs until
// one node remains.
func balancedDoc(levels int) any {
	nodes := make([]any, 1<<levels)
	for i := range nodes {
		nodes[i] = 1
	}
	for len(nodes) > 1 {
		next := make([]any, 0, len(nodes)/2)
		for i := 0; i < len(nodes); i += 2 {
			next = append(next, map[string]any{"add": []any{nodes[i], nodes[i+1]}})
		}
		nodes = next
	}
	return nodes[0]
}

func writeDoc(dir, name, content string) {
	path := filepath.Join(dir, name)
	check(os.WriteFile(path, []byte(content), 0644))
	fmt.Println("wrote", path)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
