package storage

import (
	"errors"
	"os"
	"sort"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/registry"
	"github.com/cristhianchimbo50/sri-extractor/internal/sriparser"
)

// ErrNoArchive is returned when no folder exists for the requested date.
var ErrNoArchive = errors.New("no documents downloaded for the selected date")

// IssuerFilter reports which issuers are excluded from listings.
type IssuerFilter interface {
	DisabledSet() map[string]bool
}

// DisabledIssuers is a snapshot of the issuers excluded by a filter, keyed by
// registry.Key.
type DisabledIssuers map[string]bool

// Snapshot reads the disabled issuers of f once. A nil filter excludes
// nothing.
func Snapshot(f IssuerFilter) DisabledIssuers {
	if f == nil {
		return DisabledIssuers{}
	}
	return DisabledIssuers(f.DisabledSet())
}

// Contains reports whether ruc is excluded. A blank RUC never is.
func (d DisabledIssuers) Contains(ruc string) bool {
	key := registry.Key(ruc)
	return key != "" && d[key]
}

// Archive reads day folders back into listings.
type Archive struct {
	layout Layout
	filter IssuerFilter
	logger logging.Logger
}

// NewArchive returns an archive over layout. filter may be nil.
func NewArchive(layout Layout, filter IssuerFilter, logger logging.Logger) *Archive {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Archive{layout: layout, filter: filter, logger: logger}
}

// Layout returns the archive layout.
func (a *Archive) Layout() Layout {
	return a.layout
}

// ListDate lists the day folder for the given date. It returns ErrNoArchive
// when the folder does not exist.
func (a *Archive) ListDate(year, month, day int) ([]models.ReceivedInvoice, error) {
	folder := a.layout.DayFolder(year, month, day)
	if !fileutils.DirectoryExists(folder) {
		return nil, ErrNoArchive
	}
	return a.List(folder)
}

// List decodes every XML file in folder and returns the invoices of enabled
// issuers ordered by invoice number, with Seq renumbered from 1. Files that
// fail to decode are logged and skipped.
func (a *Archive) List(folder string) ([]models.ReceivedInvoice, error) {
	files, err := fileutils.ListFilesWithExtension(folder, ".xml")
	if err != nil {
		return nil, err
	}

	disabled := Snapshot(a.filter)
	result := make([]models.ReceivedInvoice, 0, len(files))
	skipped := 0
	for _, file := range files {
		header, _, err := sriparser.DecodeFile(file)
		if err != nil {
			skipped++
			a.logger.WithError(err).Warn("Skipping unreadable document",
				logging.Field{Key: logging.FieldFile, Value: file})
			continue
		}
		if disabled.Contains(header.IssuerRUC) {
			continue
		}
		result = append(result, models.ReceivedInvoice{
			IssuerRUC:     header.IssuerRUC,
			IssuerName:    header.IssuerName,
			AccessKey:     header.AccessKey,
			EmissionDate:  dateutils.ToISODate(header.EmissionDate),
			InvoiceNumber: header.InvoiceNumber,
			XMLPath:       file,
			DownloadedAt:  modTime(file),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].InvoiceNumber < result[j].InvoiceNumber
	})
	for i := range result {
		result[i].Seq = i + 1
	}

	a.logger.Debug("Archive folder listed",
		logging.Field{Key: logging.FieldFolder, Value: folder},
		logging.Field{Key: logging.FieldCount, Value: len(result)},
		logging.Field{Key: "skipped", Value: skipped})
	return result, nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
