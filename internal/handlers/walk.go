package handlers

import (
	"io/fs"
	"os"
	"path/filepath"
)

func osStat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func walkDir(root string, visit func(path string, isDir bool)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		visit(path, d.IsDir())
		return nil
	})
}
