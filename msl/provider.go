package msl

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/pack"
)

const Extension = ".msl"

type Provider struct {
	Options Options
}

// DefaultProvider is registered for the extension; hosts fill its options.
var DefaultProvider = &Provider{}

func (p *Provider) Name() string {
	return "msl"
}

func (p *Provider) Features() []pack.Feature {
	return []pack.Feature{pack.FeatureWorldspawn, pack.FeatureSolids, pack.FeatureEntities}
}

func (p *Provider) IsValidForFileName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), Extension)
}

func (p *Provider) Load(name string, r io.ReadSeeker) (interface{}, error) {
	if !p.IsValidForFileName(name) {
		return nil, &UnsupportedFormatError{Offset: -1, Reason: "not a " + Extension + " file: " + name}
	}
	res, err := Import(r, p.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to import %q", name)
	}
	return res, nil
}

// Save always fails: the format has no writer.
func (p *Provider) Save(w io.Writer, v interface{}) error {
	return errors.Wrapf(pack.ErrUnsupportedOperation, "cannot save %s files", Extension)
}

func init() {
	pack.SetHandler(Extension, DefaultProvider)
}
