package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/sriparser"
	"github.com/cristhianchimbo50/sri-extractor/internal/storage"

	"github.com/google/uuid"
)

// Progress stages reported by Extract.
const (
	StageSearch   = "search"
	StageCaptcha  = "captcha"
	StageResults  = "results"
	StageDownload = "download"
	StageListing  = "listing"
)

// Extractor downloads the received invoices of one day and returns the
// listing of the local archive for that day.
type Extractor struct {
	launcher Launcher
	archive  *storage.Archive
	filter   storage.IssuerFilter
	opts     Options
	logger   logging.Logger
	settings
}

// ExtractStats summarizes what an extraction run did.
type ExtractStats struct {
	RunID      string
	Rows       int
	Disabled   int
	Existing   int
	Downloaded int
	Failed     int
}

// NewExtractor returns an extractor writing into archive. filter may be nil.
func NewExtractor(launcher Launcher, archive *storage.Archive, filter storage.IssuerFilter, opts Options, logger logging.Logger, options ...Option) *Extractor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Extractor{
		launcher: launcher,
		archive:  archive,
		filter:   filter,
		opts:     opts.withDefaults(),
		logger:   logger,
		settings: newSettings(options),
	}
}

// resultRow is one row of the portal results table.
type resultRow struct {
	index        int
	issuerRUC    string
	issuerName   string
	accessKey    string
	emissionDate string
}

type searchDate struct {
	year, month, day int
}

// Extract restores the session at statePath, queries the received invoices
// of the given date, downloads the ones missing from the archive and returns
// the archive listing for that day.
func (e *Extractor) Extract(ctx context.Context, statePath string, year, month, day int) ([]models.ReceivedInvoice, error) {
	rows, _, err := e.ExtractWithStats(ctx, statePath, year, month, day)
	return rows, err
}

// ExtractWithStats is Extract that also reports run counters.
func (e *Extractor) ExtractWithStats(ctx context.Context, statePath string, year, month, day int) ([]models.ReceivedInvoice, ExtractStats, error) {
	stats := ExtractStats{RunID: uuid.NewString()}
	log := e.logger.WithFields(
		logging.Field{Key: logging.FieldRunID, Value: stats.RunID},
		logging.Field{Key: logging.FieldDate, Value: fmt.Sprintf("%04d-%02d-%02d", year, month, day)})

	if !fileutils.FileExists(statePath) {
		return nil, stats, ErrNoSavedSession
	}
	if _, err := time.Parse("2006-1-2", fmt.Sprintf("%d-%d-%d", year, month, day)); err != nil {
		return nil, stats, fmt.Errorf("invalid date: %w", err)
	}

	folder, err := e.archive.Layout().EnsureDayFolder(year, month, day)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to prepare archive folder: %w", err)
	}

	page, err := e.launcher.Launch(ctx, statePath)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to start the browser: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.WithError(cerr).Debug("Browser close failed")
		}
	}()

	if err := e.navigate(ctx, page, ReceivedURL); err != nil {
		log.WithError(err).Warn("Received documents page did not settle")
	}
	if IsLoginRedirect(page.URL()) {
		return nil, stats, ErrSessionExpired
	}

	date := searchDate{year, month, day}
	e.progress.emit(StageSearch, "searching received invoices", 0, 0)
	if err := e.search(ctx, page, date); err != nil {
		return nil, stats, err
	}
	if err := e.waitWithoutCaptcha(ctx, page); err != nil {
		return nil, stats, err
	}
	if err := e.ensureResultsPanel(ctx, page, date); err != nil {
		return nil, stats, err
	}

	found, err := e.readRows(ctx, page)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read results table: %w", err)
	}
	stats.Rows = len(found)

	disabled := storage.Snapshot(e.filter)
	var pending []resultRow
	for _, row := range found {
		if disabled.Contains(row.issuerRUC) {
			stats.Disabled++
			continue
		}
		pending = append(pending, row)
	}
	e.progress.emit(StageResults, fmt.Sprintf("%d documents listed", len(pending)), 0, len(pending))

	index, err := storage.IndexByAccessKey(folder)
	if err != nil {
		return nil, stats, err
	}

	for i, row := range pending {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if _, ok := index.Lookup(row.accessKey); ok {
			stats.Existing++
			continue
		}
		e.progress.emit(StageDownload, row.accessKey, i+1, len(pending))
		path, err := e.download(ctx, page, folder, row, disabled)
		if err != nil {
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			stats.Failed++
			log.WithError(err).Warn("Download failed",
				logging.Field{Key: logging.FieldAccessKey, Value: row.accessKey})
			continue
		}
		if path == "" {
			stats.Disabled++
			continue
		}
		index.Put(row.accessKey, path)
		stats.Downloaded++
	}

	e.progress.emit(StageListing, "reading archive", 0, 0)
	result, err := e.archive.List(folder)
	if err != nil {
		return nil, stats, err
	}

	log.Info("Extraction finished",
		logging.Field{Key: logging.FieldCount, Value: len(result)},
		logging.Field{Key: "rows", Value: stats.Rows},
		logging.Field{Key: "downloaded", Value: stats.Downloaded},
		logging.Field{Key: "existing", Value: stats.Existing},
		logging.Field{Key: "disabled", Value: stats.Disabled},
		logging.Field{Key: "failed", Value: stats.Failed})
	return result, stats, nil
}

func (e *Extractor) navigate(ctx context.Context, page Page, url string) error {
	return withTimeout(ctx, e.opts.NavigationTimeout, func(c context.Context) error {
		return page.Navigate(c, url)
	})
}

// applyFilters sets the date and document-type controls that are present.
func (e *Extractor) applyFilters(ctx context.Context, page Page, date searchDate) error {
	filters := []struct{ sel, value string }{
		{SelYear, strconv.Itoa(date.year)},
		{SelMonth, strconv.Itoa(date.month)},
		{SelDay, strconv.Itoa(date.day)},
		{SelDocumentType, DocumentTypeInvoice},
	}
	for _, f := range filters {
		n, err := page.Count(ctx, f.sel)
		if err != nil || n == 0 {
			continue
		}
		if err := withTimeout(ctx, e.opts.FormTimeout, func(c context.Context) error {
			return page.Select(c, f.sel, f.value)
		}); err != nil {
			return fmt.Errorf("failed to set filter %s: %w", f.sel, err)
		}
	}
	return nil
}

func (e *Extractor) clickSearch(ctx context.Context, page Page) error {
	if err := withTimeout(ctx, e.opts.ClickTimeout, func(c context.Context) error {
		return page.Click(c, SelSearch)
	}); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	_ = withTimeout(ctx, e.opts.NavigationTimeout, page.WaitIdle)
	return e.clock.Sleep(ctx, e.opts.SearchDelay)
}

func (e *Extractor) search(ctx context.Context, page Page, date searchDate) error {
	if err := e.applyFilters(ctx, page, date); err != nil {
		return err
	}
	return e.clickSearch(ctx, page)
}

// waitWithoutCaptcha resubmits the search while a captcha challenge or a
// captcha warning is showing.
func (e *Extractor) waitWithoutCaptcha(ctx context.Context, page Page) error {
	for attempt := 1; attempt <= e.opts.CaptchaAttempts; attempt++ {
		if IsLoginRedirect(page.URL()) {
			return fmt.Errorf("session lost during the query: %w", ErrSessionExpired)
		}
		if !captchaPresent(ctx, page) && !captchaWarning(ctx, page) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		e.progress.emit(StageCaptcha, "captcha detected, searching again", attempt, e.opts.CaptchaAttempts)
		e.logger.Debug("Captcha detected", logging.Field{Key: logging.FieldAttempt, Value: attempt})
		if err := e.clickSearch(ctx, page); err != nil {
			return err
		}
		if err := e.clock.Sleep(ctx, e.opts.RetryDelay); err != nil {
			return err
		}
	}
	return ErrCaptchaBlocked
}

func captchaPresent(ctx context.Context, page Page) bool {
	for _, sel := range captchaSelectors {
		n, err := page.Count(ctx, sel)
		if err != nil || n == 0 {
			continue
		}
		if visible, err := page.Visible(ctx, sel); err == nil && visible {
			return true
		}
	}
	for _, sel := range captchaTextSelectors {
		if found, err := page.HasText(ctx, sel, "captcha"); err == nil && found {
			return true
		}
	}
	return false
}

func captchaWarning(ctx context.Context, page Page) bool {
	for _, sel := range warningSelectors {
		n, err := page.Count(ctx, sel)
		if err != nil || n == 0 {
			continue
		}
		visible, err := page.Visible(ctx, sel)
		if err != nil || !visible {
			continue
		}
		text, err := page.Text(ctx, sel)
		if err == nil && strings.Contains(strings.ToLower(text), "captcha") {
			return true
		}
	}
	return false
}

// ensureResultsPanel waits for the results panel, reloading and searching
// again when it does not show up in time.
func (e *Extractor) ensureResultsPanel(ctx context.Context, page Page, date searchDate) error {
	for attempt := 1; attempt <= e.opts.PanelAttempts; attempt++ {
		err := withTimeout(ctx, e.opts.PanelTimeout, func(c context.Context) error {
			return page.WaitVisible(c, SelResultsPanel)
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		e.logger.Debug("Results panel not visible, reloading",
			logging.Field{Key: logging.FieldAttempt, Value: attempt})
		if err := withTimeout(ctx, e.opts.NavigationTimeout, page.Reload); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if IsLoginRedirect(page.URL()) {
			return fmt.Errorf("session lost while reloading results: %w", ErrSessionExpired)
		}
		if err := e.search(ctx, page, date); err != nil {
			return err
		}
		if err := e.waitWithoutCaptcha(ctx, page); err != nil {
			return err
		}
	}
	return ErrResultsUnavailable
}

func (e *Extractor) readRows(ctx context.Context, page Page) ([]resultRow, error) {
	cells, err := page.Rows(ctx, SelResultRows, SelResultCells)
	if err != nil {
		return nil, err
	}

	rows := make([]resultRow, 0, len(cells))
	for i, row := range cells {
		if len(row) < minResultCells {
			continue
		}
		ruc, name := splitIssuer(row[cellIssuer])
		rows = append(rows, resultRow{
			index:        i,
			issuerRUC:    ruc,
			issuerName:   name,
			accessKey:    strings.TrimSpace(row[cellAccessKey]),
			emissionDate: strings.TrimSpace(row[cellEmission]),
		})
	}
	return rows, nil
}

// splitIssuer splits the issuer cell: the first non-blank line is the RUC,
// the remaining lines joined by spaces are the name.
func splitIssuer(text string) (string, string) {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// download saves the row's XML, decodes it and moves it to its final name.
// It returns "" when the decoded issuer turns out to be disabled.
func (e *Extractor) download(ctx context.Context, page Page, folder string, row resultRow, disabled storage.DisabledIssuers) (string, error) {
	partial := storage.PartialPath(folder, row.accessKey)
	err := withTimeout(ctx, e.opts.NavigationTimeout, func(c context.Context) error {
		return page.Download(c, DownloadLinkSelector(row.index), partial)
	})
	if err != nil {
		_ = os.Remove(partial)
		return "", err
	}

	header, _, err := sriparser.DecodeFile(partial)
	if err != nil {
		_ = os.Remove(partial)
		return "", err
	}
	if disabled.Contains(header.IssuerRUC) {
		if err := os.Remove(partial); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", nil
	}

	final := storage.FinalPath(folder, header.InvoiceNumber, row.accessKey)
	if err := fileutils.MoveFile(partial, final); err != nil {
		return "", err
	}
	e.logger.Debug("Document downloaded",
		logging.Field{Key: logging.FieldAccessKey, Value: row.accessKey},
		logging.Field{Key: logging.FieldInvoice, Value: header.InvoiceNumber},
		logging.Field{Key: logging.FieldFile, Value: final})
	return final, nil
}
