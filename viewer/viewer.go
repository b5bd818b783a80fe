// Package viewer serves a recorded results database over HTTP so that a
// finished run can be inspected from a browser.
package viewer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/sarchlab/cachesim/datarecording"
)

// A Viewer turns a results database into a small web server.
type Viewer struct {
	reader     datarecording.DataReader
	portNumber int
}

// New creates a Viewer over the given reader.
func New(reader datarecording.DataReader) *Viewer {
	return &Viewer{reader: reader}
}

// WithPortNumber sets the port number of the viewer. Ports below 1000 are
// rejected and a random port is used instead.
func (v *Viewer) WithPortNumber(portNumber int) *Viewer {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the results viewer, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	v.portNumber = portNumber

	return v
}

// StartServer starts serving the results database and opens the browser.
// It blocks until the server fails.
func (v *Viewer) StartServer() error {
	r := v.router()

	actualPort := ":0"
	if v.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(v.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Viewing results with %s\n", url)

	// Best effort: the server is still reachable if no browser opens.
	_ = browser.OpenURL(url)

	return http.Serve(listener, r)
}

func (v *Viewer) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/tables", v.listTables)
	r.HandleFunc("/api/tables/{name}", v.listRows)
	r.HandleFunc("/", v.home)

	return r
}

func (v *Viewer) home(w http.ResponseWriter, _ *http.Request) {
	tables, err := v.reader.ListTables()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>cachesim results</h1><ul>")
	for _, t := range tables {
		fmt.Fprintf(w, `<li><a href="/api/tables/%s">%s</a></li>`, t, t)
	}
	fmt.Fprint(w, "</ul></body></html>")
}

func (v *Viewer) listTables(w http.ResponseWriter, _ *http.Request) {
	tables, err := v.reader.ListTables()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, tables)
}

func (v *Viewer) listRows(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rows, err := v.reader.ReadRows(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
