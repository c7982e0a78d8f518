package vfs

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

func OpenFileAndGetReader(f File) (*io.SectionReader, error) {
	if err := f.Open(); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		defer f.Close()
		return nil, errors.Wrapf(err, "Cannot get file '%s' reader", f.Name())
	}
	return r, nil
}

func OpenFileAndCopy(f File, src io.Reader) error {
	if err := f.Copy(src); err != nil {
		return errors.Wrapf(err, "Cannot copy data to file '%s'", f.Name())
	}
	return nil
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	e, err := d.GetElement(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	}
	if e.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	}
	return e.(File), nil
}

// ListFiles returns the regular files of d accepted by match, sorted by name.
// A nil match accepts everything.
func ListFiles(d Directory, match func(name string) bool) ([]File, error) {
	names, err := d.List()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	result := make([]File, 0, len(names))
	for _, name := range names {
		if match != nil && !match(name) {
			continue
		}
		e, err := d.GetElement(name)
		if err != nil {
			return nil, err
		}
		if f, ok := e.(File); ok {
			result = append(result, f)
		}
	}
	return result, nil
}
