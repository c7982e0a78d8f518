package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/config"
	"github.com/mogaika/msl_browser/export"
	"github.com/mogaika/msl_browser/msl"
	"github.com/mogaika/msl_browser/reference"
	"github.com/mogaika/msl_browser/utils"
	"github.com/mogaika/msl_browser/vfs"
	"github.com/mogaika/msl_browser/web"
)

type flags struct {
	config   string
	addr     string
	dir      string
	models   string
	encoding string
	seed     int64
	prescale float64
	trace    string

	convert string
	format  string
	out     string
	dump    bool
}

func parseFlags() *flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "Path to yaml config")
	flag.StringVar(&f.addr, "i", "", "Address of server (config: listen)")
	flag.StringVar(&f.dir, "dir", "", "Path to directory with maps (config: maps_dir)")
	flag.StringVar(&f.models, "models", "", "Comma separated directories with reference models (config: model_dirs)")
	flag.StringVar(&f.encoding, "encoding", "", "Encoding of strings inside maps, one of: "+strings.Join(config.ListEncodings(), ", ")+" (config: encoding)")
	flag.Int64Var(&f.seed, "seed", 0, "Seed of brush colors (config: brush_color_seed)")
	flag.Float64Var(&f.prescale, "prescale", 0, "Uniform brush scale around its center (config: brush_prescale)")
	flag.StringVar(&f.trace, "trace", "", "Directory for verbose import logs (config: trace_dir)")
	flag.StringVar(&f.convert, "convert", "", "Import this map and export it instead of serving")
	flag.StringVar(&f.format, "format", string(export.FormatGLB), "Export format of -convert")
	flag.StringVar(&f.out, "o", "", "Output file of -convert, default is the map name with format extension")
	flag.BoolVar(&f.dump, "dump", false, "Print a dump of the imported map with -convert")
	flag.Parse()
	return &f
}

// apply overrides config values by flags given on the command line.
func (f *flags) apply(c *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "i":
			c.Listen = f.addr
		case "dir":
			c.MapsDir = f.dir
		case "models":
			c.ModelDirs = strings.Split(f.models, ",")
		case "encoding":
			c.Encoding = f.encoding
		case "seed":
			c.BrushColorSeed = f.seed
		case "prescale":
			c.BrushPreScale = float32(f.prescale)
		case "trace":
			c.TraceDir = f.trace
		}
	})
}

func traceLogger(c *config.Config, mapPath string) (*utils.Logger, func(), error) {
	if c.TraceDir == "" {
		return nil, func() {}, nil
	}
	if err := os.MkdirAll(c.TraceDir, 0777); err != nil {
		return nil, nil, errors.Wrapf(err, "Cannot create trace dir")
	}
	logFile, err := os.Create(filepath.Join(c.TraceDir, filepath.Base(mapPath)+".log"))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Cannot create trace log")
	}
	return utils.NewLogger(logFile), func() { logFile.Close() }, nil
}

func convert(c *config.Config, f *flags) error {
	format, err := export.ParseFormat(f.format)
	if err != nil {
		return err
	}

	trace, closeTrace, err := traceLogger(c, f.convert)
	if err != nil {
		return err
	}
	defer closeTrace()
	opts := msl.DefaultProvider.Options
	opts.Trace = trace

	in, err := os.Open(f.convert)
	if err != nil {
		return errors.Wrapf(err, "Cannot open map")
	}
	defer in.Close()

	res, err := (&msl.Provider{Options: opts}).Load(filepath.Base(f.convert), in)
	if err != nil {
		return err
	}
	result := res.(*msl.Result)
	for _, w := range result.Warnings {
		log.Printf("[msl] %v", w)
	}
	if f.dump {
		utils.Dump(result.Map.Objects())
	}

	name := strings.TrimSuffix(filepath.Base(f.convert), filepath.Ext(f.convert))
	outPath := f.out
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(f.convert), name+format.Extension())
	}
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "Cannot create output")
	}
	defer out.Close()

	if err := export.Write(out, format, name, result.Map); err != nil {
		return err
	}
	log.Printf("[msl] %s: %d objects written to %s", f.convert, result.Map.Len(), outPath)
	return nil
}

func main() {
	f := parseFlags()

	c, err := config.Load(f.config)
	if err != nil {
		log.Fatal(err)
	}
	f.apply(c)
	if err := c.Apply(); err != nil {
		log.Fatal(err)
	}

	msl.DefaultProvider.Options = msl.Options{
		References:  reference.DefaultSource(c.ModelDirs),
		PreScale:    c.BrushPreScale,
		BrushColors: utils.NewBrushColorGenerator(c.BrushColorSeed),
	}

	if f.convert != "" {
		if err := convert(c, f); err != nil {
			log.Fatal(err)
		}
		return
	}

	if _, err := os.Stat(c.MapsDir); err != nil {
		fmt.Fprintf(os.Stderr, "Maps directory %q is not accessible: %v\n", c.MapsDir, err)
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := web.StartServer(c.Listen, vfs.NewDirectoryDriver(c.MapsDir)); err != nil {
		log.Fatal(err)
	}
}
