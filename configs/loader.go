package configs

import (
	"errors"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

var ErrValueNotFound = errors.New("value not found")

type Source struct {
	Name    string
	Content []byte
}

// Loader resolves paths against a list of CUE sources, earlier sources first.
type Loader struct {
	roots func() ([]cue.Value, error)
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return NewSourceLoader(func() ([]Source, error) {
		var sources []Source
		for _, path := range filePaths {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, wrap(err)
			}
			sources = append(sources, Source{
				Name:    path,
				Content: content,
			})
		}
		return sources, nil
	}, schemaSrc)
}

func NewSourceLoader(getSources func() ([]Source, error), schemaSrc string) Loader {
	return Loader{
		roots: sync.OnceValues(func() ([]cue.Value, error) {
			sources, err := getSources()
			if err != nil {
				return nil, err
			}
			ctx := cuecontext.New()

			var schema cue.Value
			if schemaSrc != "" {
				schema = ctx.CompileString("close({"+schemaSrc+"})", cue.Filename("schema"))
				if err := schema.Err(); err != nil {
					return nil, wrap(err)
				}
			}

			roots := make([]cue.Value, 0, len(sources))
			for _, source := range sources {
				value := ctx.CompileBytes(source.Content, cue.Filename(source.Name))
				if err := value.Err(); err != nil {
					return nil, wrap(err)
				}
				if schema.Exists() {
					value = schema.Unify(value)
					if err := value.Validate(cue.Concrete(true)); err != nil {
						return nil, wrap(err)
					}
				}
				roots = append(roots, value)
			}
			return roots, nil
		}),
	}
}

func (l Loader) Values(path string) iter.Seq2[cue.Value, error] {
	return func(yield func(cue.Value, error) bool) {
		roots, err := l.roots()
		if err != nil {
			yield(cue.Value{}, err)
			return
		}
		cuePath := cue.ParsePath(path)
		for _, root := range roots {
			value := root.LookupPath(cuePath)
			if !value.Exists() {
				continue
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}

// AssignFirst decodes the first source defining path into target.
func (l Loader) AssignFirst(path string, target any) error {
	for value, err := range l.Values(path) {
		if err != nil {
			return err
		}
		if err := value.Decode(target); err != nil {
			return wrap(err)
		}
		return nil
	}
	return ErrValueNotFound
}
