package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadableWorkbook marks a template the readers could not parse. Callers
// report it as a rejected file.
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

type Reader interface {
	Read(path string) (Workbook, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm", "xltx", "xltm":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported template format: %s", format)
	}
}

// ReaderForPath infers the reader from the file extension unless format is set.
func ReaderForPath(path, format string) (Reader, error) {
	if strings.TrimSpace(format) != "" {
		return ReaderForFormat(format)
	}
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if extension == "" {
		return nil, fmt.Errorf("cannot infer template format for %s", path)
	}
	return ReaderForFormat(extension)
}

// ReadFile opens a template with the reader matching its extension.
func ReadFile(path string) (Workbook, error) {
	reader, err := ReaderForPath(path, "")
	if err != nil {
		return Workbook{}, err
	}
	return reader.Read(path)
}
