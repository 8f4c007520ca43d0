package pyast

import (
	"log/slog"
	"os"
	"sync"
)

// Cache is the run-wide ParsedFile cache: a path is parsed at most once,
// regardless of how many handlers' traversals reach it. It is the one
// process-wide mutable structure shared across a run (spec 5); it is
// write-once-per-key so no synchronization is needed beyond the map guard.
type Cache struct {
	mu     sync.Mutex
	parser *Parser
	files  map[string]*File
}

func NewCache(parser *Parser) *Cache {
	return &Cache{parser: parser, files: make(map[string]*File)}
}

// Get returns the cached File for path, parsing it on first access. Both a
// read failure (I/O) and a syntax error are represented in
// File.Status/File.Err; the returned error is always nil, so the engine can
// treat a bad file the same way it treats an unresolved import.
func (c *Cache) Get(path string) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.files[path]; ok {
		return f, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		f := &File{
			Path:   path,
			Status: StatusFailed,
			Err:    &ParseError{Message: err.Error(), Position: Position{File: path, Line: 1, Column: 0}},
		}
		c.files[path] = f
		return f, nil
	}

	f := c.parser.Parse(path, source)
	c.files[path] = f
	slog.Debug("parsed file", "path", path, "status", f.Status)
	return f, nil
}

// Peek returns the cached file without parsing it, for callers that only
// need to know whether a path is already known.
func (c *Cache) Peek(path string) (*File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[path]
	return f, ok
}
