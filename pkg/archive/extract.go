package archive

import (
	"archive/zip"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

// CheckMembers validates every member name of r with [errors.ValidateMember].
// name identifies the archive in the returned error.
func CheckMembers(r *zip.Reader, name string) error {
	for _, f := range r.File {
		if err := errors.ValidateMember(f.Name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// ExtractFile unpacks dest/filename into dest.
//
// Relative layout is preserved, parent directories are created and existing
// files are overwritten. If any member fails [CheckMembers], nothing is
// written.
func ExtractFile(dest, filename string) error {
	path := filepath.Join(dest, filename)
	zr, err := zip.OpenReader(path)
	if stderrors.Is(err, zip.ErrInsecurePath) {
		zr.Close()
		return errors.Wrap(errors.ErrCodeUnsafeArchiveMember, err, "%s", filename)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(path)
		}
		return errors.Wrap(errors.ErrCodeInvalidArchive, err, "open %s", filename)
	}
	defer zr.Close()

	if err := CheckMembers(&zr.Reader, filename); err != nil {
		return err
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}
	for _, f := range zr.File {
		if err := extractMember(f, absDest); err != nil {
			return fmt.Errorf("%s: extract %s: %w", filename, f.Name, err)
		}
	}
	return nil
}

// Extract runs [ExtractFile] for each archive in dest. A failing archive does
// not stop the others; all failures are joined and returned once the batch is
// done.
func Extract(dest string, filenames []string) error {
	_, err := ExtractAll(dest, filenames)
	return err
}

// ExtractAll is [Extract] that also reports which archives were unpacked
// completely, in input order.
func ExtractAll(dest string, filenames []string) (extracted []string, err error) {
	var errs []error
	for _, name := range filenames {
		if err := ExtractFile(dest, name); err != nil {
			errs = append(errs, err)
			continue
		}
		extracted = append(extracted, name)
	}
	return extracted, stderrors.Join(errs...)
}

func extractMember(f *zip.File, absDest string) error {
	target := filepath.Join(absDest, filepath.FromSlash(strings.ReplaceAll(f.Name, `\`, "/")))

	// ValidateMember already ran; this guards against platform path quirks.
	rel, err := filepath.Rel(absDest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.New(errors.ErrCodeUnsafeArchiveMember, "member %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
