package images

import (
	"bytes"
	_ "embed"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reusee/palforth/configs"
)

//go:embed schema.cue
var schema string

// Parse decodes a program in CUE form.
func Parse(name string, src []byte) (*Image, error) {
	loader := configs.NewSourceLoader(func() ([]configs.Source, error) {
		return []configs.Source{
			{
				Name:    name,
				Content: src,
			},
		}, nil
	}, schema)

	img := new(Image)
	if err := loader.AssignFirst("entry", &img.Entry); err != nil {
		return nil, err
	}
	if err := loader.AssignFirst("words", &img.Words); err != nil {
		return nil, err
	}
	if err := loader.AssignFirst("boxes", &img.Boxes); err != nil && !errors.Is(err, configs.ErrValueNotFound) {
		return nil, err
	}
	if err := img.Check(); err != nil {
		return nil, wrap(err)
	}
	return img, nil
}

func Encode(w io.Writer, img *Image) error {
	if err := gob.NewEncoder(w).Encode(img); err != nil {
		return wrap(err)
	}
	return nil
}

// Decode reads a program in gob form.
func Decode(r io.Reader) (*Image, error) {
	img := new(Image)
	if err := gob.NewDecoder(r).Decode(img); err != nil {
		return nil, wrap(err)
	}
	if err := img.Check(); err != nil {
		return nil, wrap(err)
	}
	return img, nil
}

// Load reads a program file, CUE or gob by extension.
func Load(path string) (*Image, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		return Parse(path, content)
	case ".gob":
		return Decode(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, ext)
	}
}
