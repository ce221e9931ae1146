package maven

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/srcfetch/pkg/errors"
	"github.com/matzehuels/srcfetch/pkg/filesystem"
)

const (
	// DefaultHomeDir is the Maven home under the user's home directory.
	DefaultHomeDir = ".m2"

	// RepositoryDir is the local repository directory inside the Maven home.
	RepositoryDir = "repository"

	sourcesSuffix = "-sources.jar"
)

// ArchiveDirectory returns the directory holding c's artifacts inside the
// local repository directory repoDir. Each "."-separated groupId segment
// becomes one path component, followed by artifactId and version. The
// version is never split.
func ArchiveDirectory(repoDir string, c Coordinate) string {
	parts := []string{repoDir}
	parts = append(parts, strings.Split(c.GroupID, ".")...)
	parts = append(parts, c.ArtifactID, c.Version)
	return filepath.Join(parts...)
}

// ArchiveFilename returns the source archive filename for c:
// "<artifactId>-<version>-sources.jar".
func ArchiveFilename(c Coordinate) string {
	return c.ArtifactID + "-" + c.Version + sourcesSuffix
}

// ArchivePath joins [ArchiveDirectory] and [ArchiveFilename].
func ArchivePath(repoDir string, c Coordinate) string {
	return filepath.Join(ArchiveDirectory(repoDir, c), ArchiveFilename(c))
}

// DefaultRoot returns ~/.m2.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultHomeDir), nil
}

// Repository locates source archives in a local Maven repository.
type Repository struct {
	Root string        // Maven home, e.g. /home/u/.m2
	FS   filesystem.FS // Existence checks
}

// NewRepository creates a Repository rooted at root.
// An empty root selects [DefaultRoot]; a nil fsys selects [filesystem.OS].
func NewRepository(root string, fsys filesystem.FS) (*Repository, error) {
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate home directory")
		}
	}
	if fsys == nil {
		fsys = filesystem.OS{}
	}
	return &Repository{Root: root, FS: fsys}, nil
}

// Dir returns the local repository directory, <root>/repository.
func (r *Repository) Dir() string {
	return filepath.Join(r.Root, RepositoryDir)
}

// Archive pairs a coordinate with its source archive path.
type Archive struct {
	Coordinate Coordinate
	Path       string
}

// Locate splits coords into archives present on disk and coordinates whose
// source archive is absent, both in input order.
//
// Returns a NOT_FOUND error and nothing else when the repository directory
// does not exist. Coordinates failing [Coordinate.Validate] are never looked
// up and count as missing, so no lookup leaves the repository directory.
func (r *Repository) Locate(coords []Coordinate) (found []Archive, missing []Coordinate, err error) {
	dir := r.Dir()
	if !r.FS.Exists(dir) {
		e := errors.New(errors.ErrCodeNotFound, "can't get dependency source jars, no such path: %s", dir)
		e.Path = dir
		return nil, nil, e
	}

	for _, c := range coords {
		if c.Validate() != nil {
			missing = append(missing, c)
			continue
		}
		path := ArchivePath(dir, c)
		if r.FS.Exists(path) {
			found = append(found, Archive{Coordinate: c, Path: path})
		} else {
			missing = append(missing, c)
		}
	}
	return found, missing, nil
}

// DeriveSourcePaths returns the source archive paths of coords that exist,
// in input order. See [Repository.Locate] for the error case.
func (r *Repository) DeriveSourcePaths(coords []Coordinate) ([]string, error) {
	found, _, err := r.Locate(coords)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(found))
	for i, a := range found {
		paths[i] = a.Path
	}
	return paths, nil
}
