package pack

import (
	"io"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/vfs"
)

var ErrUnsupportedOperation = errors.New("unsupported operation")

type Feature string

const (
	FeatureWorldspawn Feature = "worldspawn"
	FeatureSolids     Feature = "solids"
	FeatureEntities   Feature = "entities"
)

// Provider loads one scene file format.
type Provider interface {
	Name() string
	Features() []Feature
	IsValidForFileName(name string) bool
	Load(name string, r io.ReadSeeker) (interface{}, error)
	Save(w io.Writer, v interface{}) error
}

var gProviders = make(map[string]Provider)

func SetHandler(ext string, p Provider) {
	gProviders[strings.ToUpper(ext)] = p
}

func Handler(name string) (Provider, error) {
	ext := strings.ToUpper(filepath.Ext(name))
	if p, found := gProviders[ext]; found && p.IsValidForFileName(name) {
		return p, nil
	}
	return nil, errors.Errorf("[pack] Cannot find handler for '%s' extension", ext)
}

// Extensions lists registered extensions, upper case and sorted.
func Extensions() []string {
	result := make([]string, 0, len(gProviders))
	for ext := range gProviders {
		result = append(result, ext)
	}
	sort.Strings(result)
	return result
}

func IsSupported(name string) bool {
	_, err := Handler(name)
	return err == nil
}

func CallHandler(name string, r io.ReadSeeker) (interface{}, error) {
	p, err := Handler(name)
	if err != nil {
		return nil, err
	}
	return p.Load(name, r)
}

func GetInstanceHandler(d vfs.Directory, fileName string) (interface{}, error) {
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}

	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get instance of '%s'", fileName)
	}
	defer f.Close()

	inst, err := CallHandler(fileName, r)
	if err != nil {
		log.Printf("[pack] Handler error: %v", err)
		return nil, err
	}
	return inst, nil
}

// ListSupported returns the files of d that some provider accepts.
func ListSupported(d vfs.Directory) ([]vfs.File, error) {
	return vfs.ListFiles(d, IsSupported)
}
