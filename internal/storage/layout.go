// Package storage owns the on-disk archive of downloaded documents: where
// files live, how they are named and how a day folder is read back into a
// listing.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// AppFolder is the directory created under the user cache directory.
	AppFolder = "SriExtractor"
	// XMLFolder holds the dated document tree.
	XMLFolder = "Xml"
	// SessionStateFile is the saved browser session.
	SessionStateFile = "sri-storage.json"
	// RegistryFile is the disabled-issuer registry.
	RegistryFile = "disabled_providers.xml"
	// PartialSuffix marks a download that has not been validated yet.
	PartialSuffix = ".part"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var upperES = cases.Upper(language.Spanish)

// Layout resolves archive paths below a root directory.
type Layout struct {
	Root string
}

// DefaultRoot returns <user cache dir>/SriExtractor.
func DefaultRoot() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(base, AppFolder), nil
}

// NewLayout returns a layout rooted at root, or at DefaultRoot when root is
// blank.
func NewLayout(root string) (Layout, error) {
	if strings.TrimSpace(root) == "" {
		def, err := DefaultRoot()
		if err != nil {
			return Layout{}, err
		}
		root = def
	}
	return Layout{Root: root}, nil
}

// SessionStatePath is the saved browser session file.
func (l Layout) SessionStatePath() string {
	return filepath.Join(l.Root, SessionStateFile)
}

// RegistryPath is the disabled-issuer registry file.
func (l Layout) RegistryPath() string {
	return filepath.Join(l.Root, RegistryFile)
}

// DayFolder returns <root>/Xml/<yyyy>/<MM. MONTHNAME>/<dd-MM-yyyy>.
func (l Layout) DayFolder(year, month, day int) string {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return filepath.Join(l.Root, XMLFolder,
		fmt.Sprintf("%04d", year),
		MonthFolderName(month),
		date.Format(dateutils.DateLayoutFolder))
}

// EnsureDayFolder creates the day folder when missing and returns it.
func (l Layout) EnsureDayFolder(year, month, day int) (string, error) {
	folder := l.DayFolder(year, month, day)
	if err := fileutils.EnsureDirectoryExists(folder); err != nil {
		return "", err
	}
	return folder, nil
}

// MonthFolderName renders a month as "MM. MONTHNAME" with the Spanish name in
// upper case, e.g. "03. MARZO".
func MonthFolderName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d", month)
	}
	return fmt.Sprintf("%02d. %s", month, upperES.String(monthNames[month-1]))
}

// FinalFileName builds "<invoiceNumber>_<accessKey>.xml" with both parts
// sanitized.
func FinalFileName(invoiceNumber, accessKey string) string {
	return fileutils.SanitizeFileName(invoiceNumber) + "_" + fileutils.SanitizeFileName(accessKey) + ".xml"
}

// FinalPath joins folder and FinalFileName.
func FinalPath(folder, invoiceNumber, accessKey string) string {
	return filepath.Join(folder, FinalFileName(invoiceNumber, accessKey))
}

// PartialPath is where a download for accessKey is written before it is
// decoded and renamed.
func PartialPath(folder, accessKey string) string {
	return filepath.Join(folder, fileutils.SanitizeFileName(accessKey)+".xml"+PartialSuffix)
}

// IndexByAccessKey maps every XML file in folder by the access key embedded
// after the last '_' of its name, and by its full stem. Keys are upper-cased;
// look them up with Lookup. A missing folder yields an empty index.
func IndexByAccessKey(folder string) (Index, error) {
	index := Index{}
	if !fileutils.DirectoryExists(folder) {
		return index, nil
	}

	files, err := fileutils.ListFilesWithExtension(folder, ".xml")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if idx := strings.LastIndex(name, "_"); idx >= 0 && idx+1 < len(name) {
			if key := strings.TrimSpace(name[idx+1:]); key != "" {
				index.add(key, file)
			}
		}
		index.add(name, file)
	}
	return index, nil
}

// Index maps access keys to archived files.
type Index map[string]string

func (i Index) add(key, path string) {
	k := strings.ToUpper(key)
	if _, ok := i[k]; !ok {
		i[k] = path
	}
}

// Lookup returns the archived file for accessKey, ignoring case.
func (i Index) Lookup(accessKey string) (string, bool) {
	path, ok := i[strings.ToUpper(strings.TrimSpace(accessKey))]
	return path, ok
}

// Put records path for accessKey.
func (i Index) Put(accessKey, path string) {
	i[strings.ToUpper(strings.TrimSpace(accessKey))] = path
}
