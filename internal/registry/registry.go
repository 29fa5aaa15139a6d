// Package registry persists the set of issuers whose documents are excluded
// from downloads and listings.
//
// The backing file is a flat XML document:
//
//	<disabledProviders>
//	  <provider ruc="1790012345001" razonSocial="ACME S.A." disabled="true"/>
//	</disabledProviders>
//
// Every operation runs the full load, modify, save cycle under one mutex, so
// concurrent callers inside a process are serialized. Writes replace the file
// atomically; concurrency across processes is not coordinated.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/beevik/etree"
)

const (
	rootElement     = "disabledProviders"
	providerElement = "provider"
	attrRUC         = "ruc"
	attrName        = "razonSocial"
	attrDisabled    = "disabled"
)

// Registry is the disabled-issuer registry backed by a single XML file.
type Registry struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

// New returns a registry stored at path. The file is created on first write.
func New(path string, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Registry{path: path, logger: logger}
}

// Path returns the location of the backing file.
func (r *Registry) Path() string {
	return r.path
}

// Key is the normalized form of ruc used for lookups: trimmed and upper-cased.
func Key(ruc string) string {
	return strings.ToUpper(strings.TrimSpace(ruc))
}

// IsDisabled reports whether ruc is registered as disabled. A blank RUC is
// never disabled.
func (r *Registry) IsDisabled(ruc string) bool {
	key := Key(ruc)
	if key == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.load() {
		if Key(e.RUC) == key {
			return e.Disabled
		}
	}
	return false
}

// DisabledSet returns the normalized RUCs of every disabled issuer. It is a
// snapshot meant for filtering many rows with a single file read.
func (r *Registry) DisabledSet() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := map[string]bool{}
	for _, e := range r.load() {
		if e.Disabled {
			set[Key(e.RUC)] = true
		}
	}
	return set
}

// ListAll returns every entry with a non-blank RUC, disabled ones first, each
// half ordered by RUC.
func (r *Registry) ListAll() []models.DisabledIssuerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := []models.DisabledIssuerEntry{}
	for _, e := range r.load() {
		if strings.TrimSpace(e.RUC) == "" {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Disabled != entries[j].Disabled {
			return entries[i].Disabled
		}
		return Key(entries[i].RUC) < Key(entries[j].RUC)
	})
	return entries
}

// Counts returns the number of known issuers and how many are disabled.
func (r *Registry) Counts() (total, disabled int) {
	for _, e := range r.ListAll() {
		total++
		if e.Disabled {
			disabled++
		}
	}
	return total, disabled
}

// SetDisabled records the flag for ruc, creating the entry when missing. The
// stored name is only filled in when it was blank.
func (r *Registry) SetDisabled(ruc, name string, disabled bool) error {
	_, err := r.update(ruc, name, func(bool) bool { return disabled })
	return err
}

// Toggle flips the flag for ruc and returns the new state. An unknown issuer
// becomes disabled.
func (r *Registry) Toggle(ruc, name string) (bool, error) {
	return r.update(ruc, name, func(current bool) bool { return !current })
}

func (r *Registry) update(ruc, name string, next func(bool) bool) (bool, error) {
	key := Key(ruc)
	if key == "" {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	idx := -1
	for i, e := range entries {
		if Key(e.RUC) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		entries = append(entries, models.DisabledIssuerEntry{RUC: strings.TrimSpace(ruc)})
		idx = len(entries) - 1
	}

	entry := &entries[idx]
	entry.Disabled = next(entry.Disabled)
	if strings.TrimSpace(entry.Name) == "" && strings.TrimSpace(name) != "" {
		entry.Name = strings.TrimSpace(name)
	}

	if err := r.save(entries); err != nil {
		return entry.Disabled, err
	}

	r.logger.Debug("Disabled-issuer registry updated",
		logging.Field{Key: logging.FieldRUC, Value: entry.RUC},
		logging.Field{Key: logging.FieldStatus, Value: entry.Disabled})
	return entry.Disabled, nil
}

// load reads the backing file. A missing file is an empty registry; an
// unreadable or corrupt one is replaced by an empty file.
func (r *Registry) load() []models.DisabledIssuerEntry {
	entries, err := readFile(r.path)
	if err == nil {
		return entries
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	r.logger.WithError(err).Warn("Disabled-issuer registry is corrupt, recreating it",
		logging.Field{Key: logging.FieldFile, Value: r.path})
	if saveErr := r.save(nil); saveErr != nil {
		r.logger.WithError(saveErr).Error("Failed to recreate disabled-issuer registry")
	}
	return nil
}

func readFile(path string) ([]models.DisabledIssuerEntry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	root := doc.SelectElement(rootElement)
	if root == nil {
		return nil, fmt.Errorf("registry has no <%s> root", rootElement)
	}

	var entries []models.DisabledIssuerEntry
	for _, el := range root.SelectElements(providerElement) {
		disabled, _ := strconv.ParseBool(strings.TrimSpace(el.SelectAttrValue(attrDisabled, "false")))
		entries = append(entries, models.DisabledIssuerEntry{
			RUC:      strings.TrimSpace(el.SelectAttrValue(attrRUC, "")),
			Name:     el.SelectAttrValue(attrName, ""),
			Disabled: disabled,
		})
	}
	return entries, nil
}

func (r *Registry) save(entries []models.DisabledIssuerEntry) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement(rootElement)
	for _, e := range entries {
		el := root.CreateElement(providerElement)
		el.CreateAttr(attrRUC, e.RUC)
		el.CreateAttr(attrName, e.Name)
		el.CreateAttr(attrDisabled, strconv.FormatBool(e.Disabled))
	}
	doc.Indent(2)

	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize registry: %w", err)
	}
	if err := fileutils.WriteFileAtomic(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}
	return nil
}
