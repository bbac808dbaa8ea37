package image

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateFS defines a file system interface that supports creating files and directories.
// It extends basic file system operations with write capabilities for saving images.
type CreateFS interface {
	// Sub returns a filesystem for a subdirectory.
	Sub(name string) (sub CreateFS, err error)
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
	// Mkdir creates a new directory with the specified permissions.
	Mkdir(name string, filemode fs.FileMode) (err error)
}

// DirFS is a CreateFS rooted at a host directory.
type DirFS string

var _ CreateFS = DirFS("")

func (dir DirFS) path(name string) (path string, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
		return
	}

	path = filepath.Join(string(dir), filepath.FromSlash(name))

	return
}

func (dir DirFS) Sub(name string) (sub CreateFS, err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if !info.IsDir() {
		err = &fs.PathError{Op: "sub", Path: name, Err: fs.ErrInvalid}
		return
	}

	sub = DirFS(path)

	return
}

func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	out, err := os.Create(path)
	if err != nil {
		return
	}

	file = out

	return
}

func (dir DirFS) Mkdir(name string, filemode fs.FileMode) (err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	err = os.Mkdir(path, filemode)

	return
}
