package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/msl_browser/status"
	"github.com/mogaika/msl_browser/vfs"
)

var ServerDirectory vfs.Directory

func NewRouter(d vfs.Directory) http.Handler {
	ServerDirectory = d

	r := mux.NewRouter()
	r.HandleFunc("/json/maps", HandlerAjaxMaps).Methods("GET")
	r.HandleFunc("/json/map/{file}", HandlerAjaxMap).Methods("GET")
	r.HandleFunc("/export/{file}/{format}", HandlerExportMap).Methods("GET")
	r.HandleFunc("/upload/map/{file}", HandlerUploadMap).Methods("POST")
	r.Handle("/ws/status", status.Default)

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
}

func StartServer(addr string, d vfs.Directory) error {
	h := handlers.LoggingHandler(os.Stdout, NewRouter(d))

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
