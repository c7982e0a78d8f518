package web

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/export"
	"github.com/mogaika/msl_browser/msl"
	"github.com/mogaika/msl_browser/pack"
	"github.com/mogaika/msl_browser/status"
	"github.com/mogaika/msl_browser/vfs"
	"github.com/mogaika/msl_browser/webutils"
)

const uploadFormKey = "data"

type ajaxReference struct {
	Path   string
	Loaded bool
	Error  string `json:",omitempty"`
}

type ajaxModel struct {
	Unit      int
	Mesh      int
	Reference string
	Angles    [3]float32
	Scale     [3]float32
	Error     string `json:",omitempty"`
}

type ajaxMap struct {
	Document   *export.Document
	Units      []string
	Warnings   []string
	References []ajaxReference
	Models     []ajaxModel
}

func newAjaxMap(name string, res *msl.Result) *ajaxMap {
	am := &ajaxMap{
		Document:   export.NewDocument(name, res.Map),
		Units:      make([]string, len(res.Units)),
		Warnings:   make([]string, len(res.Warnings)),
		References: make([]ajaxReference, len(res.References)),
		Models:     make([]ajaxModel, len(res.Models)),
	}
	for i, k := range res.Units {
		am.Units[i] = k.String()
	}
	for i, w := range res.Warnings {
		am.Warnings[i] = w.String()
	}
	for i, o := range res.References {
		am.References[i] = ajaxReference{Path: o.Path, Loaded: o.Err == nil}
		if o.Err != nil {
			am.References[i].Error = o.Err.Error()
		}
	}
	for i, m := range res.Models {
		am.Models[i] = ajaxModel{Unit: m.Unit, Mesh: m.Mesh, Reference: m.Reference}
		if m.Err != nil {
			am.Models[i].Error = m.Err.Error()
		} else {
			am.Models[i].Angles = m.Alignment.Angles
			am.Models[i].Scale = m.Alignment.Scale
		}
	}
	return am
}

func loadMap(file string) (*msl.Result, error) {
	status.Info("Loading %s", file)
	inst, err := pack.GetInstanceHandler(ServerDirectory, file)
	if err != nil {
		status.Error("Loading %s failed: %v", file, err)
		return nil, err
	}
	res, ok := inst.(*msl.Result)
	if !ok {
		return nil, errors.Errorf("File %s is not a map", file)
	}
	status.Progress(1, "Loaded %s: %d objects, %d warnings", file, res.Map.Len(), len(res.Warnings))
	return res, nil
}

func HandlerAjaxMaps(w http.ResponseWriter, r *http.Request) {
	files, err := pack.ListSupported(ServerDirectory)
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}
	webutils.WriteJson(w, names)
}

func HandlerAjaxMap(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	res, err := loadMap(file)
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}
	webutils.WriteJson(w, newAjaxMap(file, res))
}

func HandlerExportMap(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}
	res, err := loadMap(file)
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}

	name := strings.TrimSuffix(file, filepath.Ext(file))
	var buf bytes.Buffer
	if err := export.Write(&buf, format, name, res.Map); err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	webutils.WriteFileHeaders(w, name+format.Extension(), format.ContentType())
	webutils.WriteResult(w, buf.Bytes())
}

// HandlerUploadMap stores a posted map after checking that it imports.
func HandlerUploadMap(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if !pack.IsSupported(file) {
		webutils.WriteError(w, http.StatusBadRequest, errors.Errorf("Unsupported file name %q, expected one of %v", file, pack.Extensions()))
		return
	}
	data, err := webutils.ReadUploadedFile(r, uploadFormKey)
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := pack.CallHandler(file, bytes.NewReader(data)); err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}

	f, err := ServerDirectory.CreateFile(file)
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if err := vfs.OpenFileAndCopy(f, bytes.NewReader(data)); err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	status.Info("Uploaded %s (%d bytes)", file, len(data))
	webutils.WriteJson(w, map[string]interface{}{"file": file, "size": len(data)})
}
