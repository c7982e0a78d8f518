package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mogaika/msl_browser/msl"
	"github.com/mogaika/msl_browser/utils"
)

func describe(u msl.Unit) string {
	h := u.Common()
	line := fmt.Sprintf("%4d 0x%08x %-7v meshes=%d", h.Index, h.Offset, u.Kind(), len(h.Meshes))
	switch u := u.(type) {
	case *msl.BrushUnit:
		samples := 0
		for _, s := range u.Soups {
			samples += len(s.Samples)
		}
		line += fmt.Sprintf(" samples=%d textures=%d translate=%v scale=%v", samples, len(u.Textures), u.Translate, u.Scale)
	case *msl.PointUnit:
		line += fmt.Sprintf(" name=%q icon=%q properties=%d origin=%v", u.Name, u.Icon, len(u.Properties), u.Translate)
	case *msl.ModelUnit:
		line += fmt.Sprintf(" materials=%q origin=%v scale=%v", u.Materials, u.Translate, u.Scale)
	case *msl.UnknownUnit:
		line += fmt.Sprintf(" subtype=%v", u.SubType)
	}
	return line
}

func main() {
	var verbose, trace bool
	flag.BoolVar(&verbose, "v", false, "Dump every decoded unit")
	flag.BoolVar(&trace, "trace", false, "Print decoder trace to stderr")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-v] [-trace] file.msl\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var logger *utils.Logger
	if trace {
		logger = utils.NewLogger(os.Stderr)
	}

	d, err := msl.NewDecoder(f, logger)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("lightmap=%v units=%d (raw %v)\n", d.Header.HasLightmap, d.Header.UnitCount, d.Header.EntityCountRaw)

	for {
		u, err := d.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			log.Fatalf("at 0x%x: %v", d.Pos(), err)
		}
		fmt.Println(describe(u))
		if verbose {
			fmt.Print(utils.SDump(u))
		}
	}
}
