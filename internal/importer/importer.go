package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/cwhuang/bsmiweb/internal/bsmi"
	"github.com/cwhuang/bsmiweb/internal/model"
)

// DefaultOpenDataURL is the authorization feed download endpoint.
const DefaultOpenDataURL = "https://data.bsmi.gov.tw/opendata/download/313000000G-000129-001.action"

// DefaultBatchSize is the number of rows written per insert batch.
const DefaultBatchSize = 1000

// rowPattern matches one <row> element of the feed. The feed is a flat
// sequence of such elements; there is no nesting to account for.
var rowPattern = regexp.MustCompile(`(?s)<row>.*?</row>`)

// Fetcher downloads the feed body.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// Store replaces the authorization table with a new dataset.
type Store interface {
	ReplaceAuthorizations(ctx context.Context, auths []model.Authorization, batchSize int, progress func(done, total int)) error
}

// Result summarizes a completed import run.
type Result struct {
	// DownloadedBytes is the size of the feed body.
	DownloadedBytes int

	// RowsFound is the number of <row> elements in the feed.
	RowsFound int

	// RowsImported is the number of rows stored after dropping invalid ones.
	RowsImported int
}

// Importer downloads and stores the authorization feed.
type Importer struct {
	// fetcher downloads the feed. The open-data endpoint serves a
	// certificate chain the system roots reject, so the caller normally
	// passes a client built with bsmi.WithInsecureTLS.
	fetcher Fetcher

	// store receives the parsed dataset.
	store Store

	// feedURL is the download endpoint.
	feedURL string

	// batchSize is the insert batch size.
	batchSize int

	// output receives human-readable progress lines.
	output io.Writer

	// logger is used for run-level logging.
	logger *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithFeedURL overrides the feed download endpoint.
func WithFeedURL(url string) Option {
	return func(imp *Importer) {
		imp.feedURL = url
	}
}

// WithBatchSize sets the insert batch size.
// Default is DefaultBatchSize if not specified.
func WithBatchSize(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.batchSize = n
		}
	}
}

// WithOutput sets the writer for progress lines.
// Default is io.Discard if not specified.
func WithOutput(w io.Writer) Option {
	return func(imp *Importer) {
		imp.output = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) {
		imp.logger = logger
	}
}

// New creates an Importer.
func New(fetcher Fetcher, store Store, opts ...Option) *Importer {
	imp := &Importer{
		fetcher:   fetcher,
		store:     store,
		feedURL:   DefaultOpenDataURL,
		batchSize: DefaultBatchSize,
		output:    io.Discard,
	}

	for _, opt := range opts {
		opt(imp)
	}

	if imp.logger == nil {
		imp.logger = slog.Default()
	}

	return imp
}

// ImportAll downloads the feed, parses every row, and replaces the stored
// authorization dataset. Rows without an authorization certificate number
// are dropped before storage.
func (imp *Importer) ImportAll(ctx context.Context) (*Result, error) {
	imp.logger.Info("downloading authorization feed", "url", imp.feedURL)
	fmt.Fprintf(imp.output, "Downloading %s ...\n", imp.feedURL)

	body, err := imp.fetcher.Get(ctx, imp.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}

	rows := rowPattern.FindAllString(body, -1)
	auths := make([]model.Authorization, 0, len(rows))
	for _, row := range rows {
		auth := parseRow(row)
		if !auth.IsValid() {
			continue
		}
		auths = append(auths, auth)
	}

	result := &Result{
		DownloadedBytes: len(body),
		RowsFound:       len(rows),
		RowsImported:    len(auths),
	}

	fmt.Fprintf(imp.output, "Downloaded %.1f MB, %d rows (%d valid)\n",
		float64(result.DownloadedBytes)/(1024*1024), result.RowsFound, result.RowsImported)

	err = imp.store.ReplaceAuthorizations(ctx, auths, imp.batchSize, func(done, total int) {
		fmt.Fprintf(imp.output, "  Imported %d / %d\n", done, total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store authorizations: %w", err)
	}

	imp.logger.Info("authorization import complete",
		"rows_found", result.RowsFound,
		"rows_imported", result.RowsImported,
	)
	return result, nil
}

// parseRow extracts one authorization from a <row> element.
func parseRow(row string) model.Authorization {
	return model.Authorization{
		ID:              bsmi.ExtractTag(row, "授權證號"),
		CertificateID:   bsmi.ExtractTag(row, "證書編號"),
		AuthorizerName:  bsmi.ExtractTag(row, "授權人名稱"),
		MainModel:       bsmi.ExtractTag(row, "主型式"),
		AuthorizeeTaxID: bsmi.ExtractTag(row, "被授權人統編"),
		AuthorizeeName:  bsmi.ExtractTag(row, "被授權人名稱"),
		AuthorizeeAddr:  bsmi.ExtractTag(row, "被授權人地址"),
		AuthorizeePhone: bsmi.ExtractTag(row, "被授權人電話"),
		ValidDate:       bsmi.ExtractTag(row, "授權有效時間"),
	}
}
