package configs

import "errors"

// First returns the first value defined at path, or the zero value.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil && !errors.Is(err, ErrValueNotFound) {
		panic(err)
	}
	return value
}

func All[T any](loader Loader, path string) (ret []T, err error) {
	for value, err := range loader.Values(path) {
		if err != nil {
			return nil, err
		}
		var v T
		if err := value.Decode(&v); err != nil {
			return nil, wrap(err)
		}
		ret = append(ret, v)
	}
	return
}
