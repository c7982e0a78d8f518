package web

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/msl_browser/vfs"
)

// pointLightMap is a scene stream holding one point light.
func pointLightMap() []byte {
	var buf bytes.Buffer
	f := func(values ...float32) {
		for _, v := range values {
			binary.Write(&buf, binary.LittleEndian, v)
		}
	}
	f(0, 3)       // no lightmap, one unit
	f(0, 0, 3, 0) // no meshes, entity, point subtype, skipped float
	f(1, 3, 2)    // translate, stored x z y
	f(1, 1, 1)    // scale
	f(make([]float32, 27)...)
	buf.WriteString("pointlight\nicon\n")
	f(1)
	buf.WriteString("range\n512\ncolor\n255,200,100\n")
	return buf.Bytes()
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "level.msl"), pointLightMap(), 0666))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0666))
	srv := httptest.NewServer(NewRouter(vfs.NewDirectoryDriver(dir)))
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestListMaps(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/json/maps")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var names []string
	require.NoError(t, json.Unmarshal(body, &names))
	assert.Equal(t, []string{"level.msl"}, names)
}

func TestMapJson(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/json/map/level.msl")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var am ajaxMap
	require.NoError(t, json.Unmarshal(body, &am))
	assert.Equal(t, []string{"point"}, am.Units)
	assert.Empty(t, am.Warnings)
	require.Len(t, am.Document.Entities, 1)
	e := am.Document.Entities[0]
	assert.Equal(t, "light", e.ClassName)
	assert.Equal(t, [3]float32{1, 2, 3}, e.Origin)

	resp, _ = get(t, srv.URL+"/json/map/missing.msl")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/export/level.msl/yaml")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, `attachment; filename="level.yaml"`, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, string(body), "classname: light")

	resp, _ = get(t, srv.URL+"/export/level.msl/blend")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func upload(t *testing.T, url string, data []byte) int {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(uploadFormKey, "upload.msl")
	require.NoError(t, err)
	fw.Write(data)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestUpload(t *testing.T) {
	srv, dir := newTestServer(t)

	assert.Equal(t, http.StatusUnprocessableEntity, upload(t, srv.URL+"/upload/map/broken.msl", []byte{1, 2}))
	_, err := os.Stat(filepath.Join(dir, "broken.msl"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, http.StatusBadRequest, upload(t, srv.URL+"/upload/map/level.txt", pointLightMap()))

	assert.Equal(t, http.StatusOK, upload(t, srv.URL+"/upload/map/copy.msl", pointLightMap()))
	stored, err := ioutil.ReadFile(filepath.Join(dir, "copy.msl"))
	require.NoError(t, err)
	assert.Equal(t, pointLightMap(), stored)
}
