package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "msl_browser"
	return doc
}

// AddRootNode appends node to the document and to its default scene.
func AddRootNode(doc *gltf.Document, node *gltf.Node) uint32 {
	index := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, node)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, index)
	return index
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// ExportEmbedded writes a json document with buffers inlined as data uris.
func ExportEmbedded(w io.Writer, doc *gltf.Document) error {
	for _, b := range doc.Buffers {
		if b.URI == "" && len(b.Data) != 0 {
			b.EmbeddedResource()
		}
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = false
	return encoder.Encode(doc)
}
