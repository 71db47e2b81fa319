package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultFileMode fs.FileMode = 0o644

// writeAtomic writes data to a sibling temp file and renames it over path,
// so readers never observe a partial destination. An existing destination
// keeps its permission bits.
func writeAtomic(fsys afero.Fs, path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	mode := defaultFileMode
	if info, statErr := fsys.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		mode = info.Mode().Perm()
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}
	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = fsys.Remove(name)
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(name, mode); err != nil {
		return err
	}
	return fsys.Rename(name, path)
}
