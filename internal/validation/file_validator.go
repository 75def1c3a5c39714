package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// WorkbookExtensions lists the OOXML spreadsheet formats the parser reads
var WorkbookExtensions = []string{".xlsx", ".xlsm"}

// FileValidator checks workbook paths before they are opened
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("input directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("input path is not a directory", slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("path is not a regular file", slog.String("path", path))
		return fmt.Errorf("%s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbookName checks the extension and rejects Office lock files.
// It does not touch the filesystem, so uploads can use it too.
func (v *FileValidator) ValidateWorkbookName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !IsWorkbookExtension(ext) {
		return fmt.Errorf("file %s is not an Excel workbook (extension: %q)", name, ext)
	}
	if IsLockFile(name) {
		return fmt.Errorf("file %s is a temporary Excel lock file", name)
	}
	return nil
}

// ValidateWorkbook checks that path is a readable workbook file
func (v *FileValidator) ValidateWorkbook(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if err := v.ValidateWorkbookName(path); err != nil {
		v.logger.Warn("rejected workbook path",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// IsWorkbookExtension reports whether ext (with dot) is readable
func IsWorkbookExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range WorkbookExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsLockFile reports whether name is an Office owner file such as ~$book.xlsx
func IsLockFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}
