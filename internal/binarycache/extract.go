package binarycache

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// extractBinaries unpacks the regular files of a .tar.gz whose base name
// matches one of binaries into dest, flattening any directory structure.
// Every requested binary must be present.
func extractBinaries(archivePath, dest string, binaries []string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	wanted := make(map[string]string, len(binaries))
	for _, bin := range binaries {
		wanted[executableName(bin)] = bin
	}
	missing := make(map[string]struct{}, len(binaries))
	for _, bin := range binaries {
		missing[bin] = struct{}{}
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		base := path.Base(filepath.ToSlash(header.Name))
		bin, ok := wanted[base]
		if !ok {
			continue
		}
		if err := writeExecutable(filepath.Join(dest, base), tr); err != nil {
			return err
		}
		delete(missing, bin)
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for bin := range missing {
			names = append(names, bin)
		}
		sort.Strings(names)
		return fmt.Errorf("archive missing expected executables: %s", strings.Join(names, ", "))
	}
	return nil
}

func writeExecutable(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}
