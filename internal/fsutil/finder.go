// Package fsutil provides file system helpers for locating templates and
// configuration files.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files
// ending with the specified extension and returns their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// FindNamedTemplate searches rootPath for a template file whose base name
// (with or without the extension) matches name. It returns the empty string
// when no such file exists.
func FindNamedTemplate(rootPath, name, extension string) (string, error) {
	files, err := FindFilesByExtension(rootPath, extension)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base == name || strings.TrimSuffix(base, extension) == name {
			return f, nil
		}
	}
	return "", nil
}
