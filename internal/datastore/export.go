package datastore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// ExportCSV writes records with a header row. Columns follow the csv tags
// of PatchRecord.
func ExportCSV(w io.Writer, records []PatchRecord) error {
	if err := gocsv.Marshal(&records, w); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("operation", "export_csv").
			Build()
	}
	return nil
}

// ExportCSVFile writes records to path, creating parent directories.
func ExportCSVFile(path string, records []PatchRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fileError(err, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fileError(err, path)
	}
	if err := ExportCSV(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fileError(err, path)
	}
	GetLogger().Info("records exported",
		logger.String("path", path),
		logger.Int("count", len(records)))
	return nil
}

// ImportCSV reads records written by ExportCSV.
func ImportCSV(r io.Reader) ([]PatchRecord, error) {
	var records []PatchRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileParsing).
			Context("operation", "import_csv").
			Build()
	}
	return records, nil
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryFileIO).
		FileContext(path).
		Build()
}
