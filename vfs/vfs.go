package vfs

import (
	"io"
)

// must contain only metadata (filename) until Open/List/GetElement calls
type Element interface {
	Name() string
	IsDirectory() bool
}

type File interface {
	Element
	Path() string
	Size() int64
	Open() error
	Close() error
	Reader() (*io.SectionReader, error)
	Copy(src io.Reader) error
}

type Directory interface {
	Element
	Path() string
	List() ([]string, error)
	GetElement(name string) (Element, error)
	CreateFile(name string) (File, error)
}
