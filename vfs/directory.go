package vfs

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func (dd *DirectoryDriver) List() ([]string, error) {
	fileinfos, err := ioutil.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error getting directory '%s' info", dd.path)
	}
	result := make([]string, 0, len(fileinfos))
	for _, f := range fileinfos {
		result = append(result, f.Name())
	}
	return result, nil
}

// GetElement rejects names that would escape the directory.
func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	newPath := filepath.Join(dd.path, name)
	s, err := os.Stat(newPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Stat error")
	}
	if s.IsDir() {
		return NewDirectoryDriver(newPath), nil
	}
	return NewDirectoryDriverFile(newPath), nil
}

func (dd *DirectoryDriver) CreateFile(name string) (File, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(dd.path, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "file '%s' creation failure", path)
	}
	f.Close()
	return NewDirectoryDriverFile(path), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return errors.Errorf("Invalid file name %q", name)
	}
	return nil
}

type DirectoryDriverFile struct {
	path string
	f    *os.File
}

func NewDirectoryDriverFile(path string) *DirectoryDriverFile {
	return &DirectoryDriverFile{path: path}
}

func (ddf *DirectoryDriverFile) Name() string {
	return filepath.Base(ddf.path)
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Path() string {
	return ddf.path
}

func (ddf *DirectoryDriverFile) Size() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.Size()
	}
}

func (ddf *DirectoryDriverFile) Open() error {
	if ddf.f != nil {
		return errors.Errorf("File already opened")
	}
	f, err := os.Open(ddf.path)
	if err != nil {
		return errors.Wrapf(err, "os.Open('%s')", ddf.path)
	}
	ddf.f = f
	return nil
}

func (ddf *DirectoryDriverFile) Close() error {
	if ddf.f != nil {
		if err := ddf.f.Close(); err != nil {
			return errors.Wrapf(err, "os.File.Close()")
		}
		ddf.f = nil
	}
	return nil
}

func (ddf *DirectoryDriverFile) Reader() (*io.SectionReader, error) {
	if ddf.f == nil {
		return nil, errors.Errorf("First you need to open file")
	}
	return io.NewSectionReader(ddf.f, 0, ddf.Size()), nil
}

func (ddf *DirectoryDriverFile) Copy(src io.Reader) error {
	ddf.Close()

	f, err := os.Create(ddf.path)
	if err != nil {
		return errors.Wrapf(err, "os.Create('%s')", ddf.path)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return errors.Wrapf(err, "io.Copy(...)")
	}
	return nil
}
