// Package serve serves files from a directory over HTTP
package serve

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/choreo/choreoserve/fs"
	libhttp "github.com/choreo/choreoserve/lib/http"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// indexPages are served in place of a directory, in order of preference
var indexPages = []string{"index.html", "index.htm"}

// Options controls the Handler
type Options struct {
	Root         string // directory to serve files from
	SniffContent bool   // detect the type of files with unknown extensions from their contents
}

// DefaultOpt is the default values used for Options
var DefaultOpt = Options{
	Root: ".",
}

// Handler serves the files under Root
type Handler struct {
	opt  Options
	root http.Dir
}

// NewHandler makes a Handler checking that opt.Root is a directory
func NewHandler(opt Options) (*Handler, error) {
	fi, err := os.Stat(opt.Root)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(fs.ErrorDirNotFound, "can't serve %q", opt.Root)
	} else if err != nil {
		return nil, errors.Wrapf(err, "can't serve %q", opt.Root)
	}
	if !fi.IsDir() {
		return nil, errors.Wrapf(fs.ErrorNotADirectory, "can't serve %q", opt.Root)
	}
	return &Handler{
		opt:  opt,
		root: http.Dir(opt.Root),
	}, nil
}

// Root returns the directory being served
func (h *Handler) Root() string {
	return h.opt.Root
}

// ServeHTTP serves the file named by the URL path of r
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	// Clean the path so it can't go above the root
	name := path.Clean(urlPath)
	isDirURL := strings.HasSuffix(urlPath, "/")

	f, err := h.root.Open(name)
	if err != nil {
		serveError(w, r, name, err)
		return
	}
	defer closeFile(name, f)
	fi, err := f.Stat()
	if err != nil {
		serveError(w, r, name, err)
		return
	}

	if fi.IsDir() {
		if !isDirURL {
			redirectToDir(w, r, name)
			return
		}
		h.serveDir(w, r, name)
		return
	}
	if isDirURL {
		fs.Infof(name, "%s: Not a directory", r.RemoteAddr)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	h.serveFile(w, r, name, f, fi)
}

// redirectToDir sends a redirect to the directory dirName with a
// trailing "/", keeping the query.
//
// dirName is clean so the Location never has dot segments in.
func redirectToDir(w http.ResponseWriter, r *http.Request, dirName string) {
	dirPath := libhttp.BaseURL(r) + dirName
	if !strings.HasSuffix(dirPath, "/") {
		dirPath += "/"
	}
	target := url.URL{Path: dirPath, RawQuery: r.URL.RawQuery}
	w.Header().Set("Location", target.String())
	w.WriteHeader(http.StatusMovedPermanently)
}

// serveDir serves the index page of the directory dirName or a 404
// if there isn't one
func (h *Handler) serveDir(w http.ResponseWriter, r *http.Request, dirName string) {
	for _, index := range indexPages {
		indexName := path.Join(dirName, index)
		f, err := h.root.Open(indexName)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			serveError(w, r, indexName, err)
			return
		}
		fi, err := f.Stat()
		if err != nil {
			closeFile(indexName, f)
			serveError(w, r, indexName, err)
			return
		}
		if fi.IsDir() {
			closeFile(indexName, f)
			continue
		}
		h.serveFile(w, r, indexName, f, fi)
		closeFile(indexName, f)
		return
	}
	fs.Infof(dirName, "%s: Directory has no index page", r.RemoteAddr)
	http.Error(w, "File not found", http.StatusNotFound)
}

// serveFile serves the contents of file f which is called name
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string, f http.File, fi os.FileInfo) {
	mimeType := fs.MimeTypeFromName(name)
	if mimeType == "application/octet-stream" && h.opt.SniffContent {
		mimeType = sniffMimeType(name, f)
	}
	w.Header().Set("Content-Type", mimeType)

	fs.Infof(name, "%s: Serving file as %q", r.RemoteAddr, mimeType)
	http.ServeContent(w, r, name, fi.ModTime(), f)
}

// sniffMimeType detects the type of f from its contents, rewinding it
// afterwards
func sniffMimeType(name string, f http.File) string {
	mimeType := "application/octet-stream"
	detected, err := mimetype.DetectReader(f)
	if err != nil {
		fs.Debugf(name, "Failed to detect content type: %v", err)
	} else {
		mimeType = detected.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fs.Errorf(name, "Failed to rewind after detecting content type: %v", err)
	}
	return mimeType
}

// serveError maps err from opening or reading name to an HTTP status
// and logs it.
func serveError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case os.IsNotExist(err):
		fs.Infof(name, "%s: File not found", r.RemoteAddr)
		http.Error(w, "File not found", http.StatusNotFound)
	case os.IsPermission(err):
		fs.Infof(name, "%s: Permission denied", r.RemoteAddr)
		http.Error(w, "Permission denied", http.StatusForbidden)
	default:
		Error(name, w, "Failed to open file", err)
	}
}

// Error returns an http.StatusInternalServerError and logs the error
func Error(what interface{}, w http.ResponseWriter, text string, err error) {
	fs.Errorf(what, "%s: %v", text, err)
	http.Error(w, text+".", http.StatusInternalServerError)
}

// closeFile closes f logging any error
func closeFile(name string, f http.File) {
	if err := f.Close(); err != nil {
		fs.Errorf(name, "Failed to close file: %v", err)
	}
}
