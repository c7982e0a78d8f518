package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/mogaika/msl_browser/scene"
)

// OBJ writes solids as polygon faces grouped by texture. Entities are listed as
// comments. When matlib is not nil a material library is written to it as well.
func OBJ(w io.Writer, matlib io.Writer, name string, m *scene.Map) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", name)
	if matlib != nil {
		fmt.Fprintf(bw, "mtllib %s.mtl\n", name)
	}

	textures := make(map[string]struct{})
	vertexIndex, normalIndex := 1, 1
	for _, o := range m.Objects() {
		switch o.Kind {
		case scene.KindSolid:
			fmt.Fprintf(bw, "o %s\n", objectName(o))
			names, groups := textureGroups(o.Solid)
			for _, texture := range names {
				textures[texture] = struct{}{}
				fmt.Fprintf(bw, "usemtl %s\n", texture)
				for _, f := range groups[texture] {
					n := f.Plane.Normal
					for _, v := range f.Vertices {
						fmt.Fprintf(bw, "v %f %f %f\n", v[0], v[1], v[2])
					}
					fmt.Fprintf(bw, "vn %f %f %f\n", n[0], n[1], n[2])
					bw.WriteString("f")
					for i := range f.Vertices {
						fmt.Fprintf(bw, " %d//%d", vertexIndex+i, normalIndex)
					}
					bw.WriteString("\n")
					vertexIndex += len(f.Vertices)
					normalIndex++
				}
			}
		case scene.KindEntity:
			e := o.Entity
			fmt.Fprintf(bw, "# entity %s %f %f %f\n", e.ClassName, e.Origin[0], e.Origin[1], e.Origin[2])
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if matlib == nil {
		return nil
	}
	sorted := make([]string, 0, len(textures))
	for t := range textures {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	mw := bufio.NewWriter(matlib)
	for _, t := range sorted {
		fmt.Fprintf(mw, "newmtl %s\nKd 1.000000 1.000000 1.000000\nmap_Kd %s.png\n\n", t, t)
	}
	return mw.Flush()
}
