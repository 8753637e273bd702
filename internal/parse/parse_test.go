package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoExtractsFunctionsAndCallSites(t *testing.T) {
	src := []byte(`package main

import "fmt"

func helper() {
	fmt.Println("hi")
}

func main() {
	helper()
}
`)
	m := NewManager(2)
	result, err := Parse(context.Background(), m, "go", src, 1)
	require.NoError(t, err)
	require.Len(t, result.Functions, 2)
	require.Len(t, result.Imports, 1)
	require.NotNil(t, result.GAST, "expected a normalized GAST root")

	var names []string
	for _, cs := range result.CallSites {
		names = append(names, cs.CalleeName)
	}
	assert.True(t, containsName(names, "helper"), "expected a call site for helper(), got %v", names)
	assert.True(t, containsName(names, "Println"), "expected a call site for fmt.Println (callee name Println), got %v", names)
}

func TestParsePythonExtractsMethodCallSite(t *testing.T) {
	src := []byte(`class Greeter:
    def greet(self):
        print("hello")

g = Greeter()
g.greet()
`)
	m := NewManager(2)
	result, err := Parse(context.Background(), m, "python", src, 2)
	require.NoError(t, err)
	var names []string
	for _, cs := range result.CallSites {
		names = append(names, cs.CalleeName)
	}
	assert.True(t, containsName(names, "greet"), "expected a call site for g.greet() (callee name greet), got %v", names)
	assert.True(t, containsName(names, "Greeter"), "expected a call site for Greeter() constructor call, got %v", names)
}

func TestParseUnsupportedLanguageErrors(t *testing.T) {
	m := NewManager(1)
	_, err := Parse(context.Background(), m, "cobol", []byte("x"), 3)
	assert.Error(t, err, "expected an error for an unsupported language")
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
