package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

var testSchema = `
str?: string
list?: [...int]
`

func writeFiles(t *testing.T, contents ...string) []string {
	dir := t.TempDir()
	var paths []string
	for i, content := range contents {
		path := filepath.Join(dir, fmt.Sprintf("%d.cue", i))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestAssignFirst(t *testing.T) {
	loader := NewLoader(writeFiles(t,
		`str: "bar", list: [1, 2, 3]`,
		`str: "foo"`,
	), testSchema)

	var str string
	if err := loader.AssignFirst("str", &str); err != nil {
		t.Fatal(err)
	}
	if str != "bar" {
		t.Fatalf("got %q", str)
	}

	var list []int
	if err := loader.AssignFirst("list", &list); err != nil {
		t.Fatal(err)
	}
	if s := fmt.Sprint(list); s != "[1 2 3]" {
		t.Fatalf("got %s", s)
	}

	if err := loader.AssignFirst("not", &list); !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}
	if s := First[string](loader, "not"); s != "" {
		t.Fatalf("got %q", s)
	}
}

func TestAll(t *testing.T) {
	loader := NewLoader(writeFiles(t,
		`str: "bar"`,
		`list: [1]`,
		`str: "foo"`,
	), testSchema)
	strs, err := All[string](loader, "str")
	if err != nil {
		t.Fatal(err)
	}
	if s := fmt.Sprint(strs); s != "[bar foo]" {
		t.Fatalf("got %s", s)
	}
}

func TestSchemaViolation(t *testing.T) {
	loader := NewLoader(writeFiles(t,
		`unknown_field: 1`,
	), testSchema)
	var str string
	err := loader.AssignFirst("str", &str)
	if err == nil {
		t.Fatal("should error")
	}
	t.Logf("%v", err)
}

func TestMissingFile(t *testing.T) {
	loader := NewLoader([]string{filepath.Join(t.TempDir(), "none.cue")}, "")
	if err := loader.AssignFirst("str", new(string)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v", err)
	}
}

func TestSourceLoader(t *testing.T) {
	loader := NewSourceLoader(func() ([]Source, error) {
		return []Source{
			{Name: "a", Content: []byte(`str: "a"`)},
		}, nil
	}, testSchema)
	if s := First[string](loader, "str"); s != "a" {
		t.Fatalf("got %q", s)
	}
}

func TestSchemaDefault(t *testing.T) {
	loader := NewSourceLoader(func() ([]Source, error) {
		return []Source{
			{Name: "a", Content: []byte(`list: [1]`)},
		}, nil
	}, `
list?: [...int]
name: string | *"default"
`)
	if s := First[string](loader, "name"); s != "default" {
		t.Fatalf("got %q", s)
	}
}
