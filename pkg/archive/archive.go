// Package archive copies source archives into a destination directory and
// unpacks them there.
//
// Archives are ZIP files (a Maven "-sources.jar" is a plain ZIP). Before any
// member is written, every member name of the archive is checked with
// [CheckMembers]; an archive holding an absolute name or a ".." segment is
// refused as a whole, so the destination is never modified by it.
//
// # Usage
//
//	res, err := archive.CopyArchives(paths, dest)
//	if err != nil {
//	    return err
//	}
//	err = archive.Extract(dest, archive.StripPaths(res.Copied))
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

// CopyResult reports what [CopyArchives] did.
type CopyResult struct {
	Copied    []string   // Destination paths, in input order
	Conflicts []Conflict // Later archives that shared a filename with an earlier one
}

// Conflict describes an archive that was not copied because an earlier archive
// in the same batch already claimed its filename.
type Conflict struct {
	Filename string // Basename both archives map to
	Kept     string // Source path that was copied
	Skipped  string // Source path that was not copied
}

// Error returns the conflict as an ARCHIVE_CONFLICT error, for logging.
func (c Conflict) Error() error {
	return errors.New(errors.ErrCodeArchiveConflict,
		"%s: keeping %s, skipping %s", c.Filename, c.Kept, c.Skipped)
}

// CopyArchives copies each archive, byte for byte, into dest.
//
// dest must be an existing directory. Within one call the first archive to
// claim a filename wins; later ones are reported in [CopyResult.Conflicts].
// A file with the same name left in dest by an earlier run is overwritten.
func CopyArchives(paths []string, dest string) (*CopyResult, error) {
	info, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return nil, errors.NotFound(dest)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat destination %s", dest)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "destination %s is not a directory", dest)
	}

	res := &CopyResult{}
	claimed := make(map[string]string, len(paths))
	for _, src := range paths {
		name := filepath.Base(src)
		if kept, ok := claimed[name]; ok {
			res.Conflicts = append(res.Conflicts, Conflict{Filename: name, Kept: kept, Skipped: src})
			continue
		}
		claimed[name] = src

		target := filepath.Join(dest, name)
		if err := copyFile(src, target); err != nil {
			return res, fmt.Errorf("copy %s: %w", src, err)
		}
		res.Copied = append(res.Copied, target)
	}
	return res, nil
}

// StripPaths returns the basename of each path.
func StripPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
