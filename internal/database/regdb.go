package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cwhuang/bsmiweb/internal/model"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "bsmiweb.db"

// RegDB provides SQLite-based storage for registrations, certificates,
// and authorizations. It manages connection pooling and provides methods
// for the lookup service, the bulk importer, and the HTTP surface.
//
// Design decision: The handle is constructed explicitly and passed down to
// every component that needs it, with Open/Close bracketing the process
// lifetime. No package-level singleton exists; this keeps tests isolated
// and makes the ownership of the connection obvious.
type RegDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RegDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended: the serve path reads while background
	// refreshes write.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RegDB inside the specified directory.
func Open(dbDir string, opts Options) (*RegDB, error) {
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return OpenPath(filepath.Join(dbDir, dbFileName), opts)
}

// OpenPath opens or creates a RegDB at an explicit file path.
// This is the entry point used when DATABASE_URL points at a file.
func OpenPath(dbPath string, opts Options) (*RegDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a second connection attempting a
	// write would fail with SQLITE_BUSY rather than queueing.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RegDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RegDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RegDB) createTables() error {
	schema := `
	-- Vendor records scraped from the BSMI lookup service
	CREATE TABLE IF NOT EXISTS registrations (
		id TEXT PRIMARY KEY,
		tax_id TEXT NOT NULL,
		applicant TEXT NOT NULL,
		contact_addr TEXT NOT NULL,
		company_addr TEXT NOT NULL,
		phone TEXT NOT NULL,
		note TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_registrations_tax_id ON registrations(tax_id);

	-- Product certificates, replaced as a set on every refresh
	CREATE TABLE IF NOT EXISTS certificates (
		id TEXT PRIMARY KEY,
		registration_id TEXT NOT NULL REFERENCES registrations(id),
		valid_date TEXT NOT NULL,
		status TEXT NOT NULL,
		product_name TEXT NOT NULL,
		sold_as TEXT NOT NULL,
		main_model TEXT NOT NULL,
		series_models TEXT NOT NULL,
		issuer TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_certificates_registration ON certificates(registration_id);

	-- Resale authorizations from the open-data feed; certificate_id is a
	-- loose reference by number, not an enforced foreign key
	CREATE TABLE IF NOT EXISTS authorizations (
		id TEXT PRIMARY KEY,
		certificate_id TEXT NOT NULL,
		authorizer_name TEXT NOT NULL,
		main_model TEXT NOT NULL,
		authorizee_tax_id TEXT NOT NULL,
		authorizee_name TEXT NOT NULL,
		authorizee_addr TEXT NOT NULL,
		authorizee_phone TEXT NOT NULL,
		valid_date TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_authorizations_certificate ON authorizations(certificate_id);
	CREATE INDEX IF NOT EXISTS idx_authorizations_tax_id ON authorizations(authorizee_tax_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// GetRegistration retrieves a registration and its certificates by mark
// code. Returns (nil, nil) when no record exists.
func (rdb *RegDB) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	query := `
	SELECT id, tax_id, applicant, contact_addr, company_addr, phone, note, created_at, updated_at
	FROM registrations
	WHERE id = ?
	`

	var reg model.Registration
	var createdAt, updatedAt string

	err := rdb.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID,
		&reg.TaxID,
		&reg.Applicant,
		&reg.ContactAddr,
		&reg.CompanyAddr,
		&reg.Phone,
		&reg.Note,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	reg.CreatedAt = parseTimestamp(createdAt)
	reg.UpdatedAt = parseTimestamp(updatedAt)

	certs, err := rdb.listCertificates(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.Certificates = certs

	return &reg, nil
}

// listCertificates returns a registration's certificates in insertion order.
func (rdb *RegDB) listCertificates(ctx context.Context, registrationID string) ([]model.Certificate, error) {
	query := `
	SELECT id, registration_id, valid_date, status, product_name, sold_as, main_model, series_models, issuer
	FROM certificates
	WHERE registration_id = ?
	ORDER BY rowid
	`

	rows, err := rdb.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(
			&c.ID,
			&c.RegistrationID,
			&c.ValidDate,
			&c.Status,
			&c.ProductName,
			&c.SoldAs,
			&c.MainModel,
			&c.SeriesModels,
			&c.Issuer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, c)
	}

	return certs, rows.Err()
}

// UpsertRegistration stores a freshly scraped registration.
//
// Within one transaction it deletes every certificate for the mark code,
// writes the registration's scalar fields (create-or-update, bumping
// updated_at), and inserts the new certificate set. The certificate set is
// therefore always a complete replacement, never a merge of old and new
// rows; re-running with identical data is idempotent.
func (rdb *RegDB) UpsertRegistration(ctx context.Context, reg *model.Registration) (err error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM certificates WHERE registration_id = ?`, reg.ID); err != nil {
		return fmt.Errorf("failed to delete certificates: %w", err)
	}

	upsert := `
	INSERT INTO registrations (id, tax_id, applicant, contact_addr, company_addr, phone, note)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tax_id = excluded.tax_id,
		applicant = excluded.applicant,
		contact_addr = excluded.contact_addr,
		company_addr = excluded.company_addr,
		phone = excluded.phone,
		note = excluded.note,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err = tx.ExecContext(ctx, upsert,
		reg.ID,
		reg.TaxID,
		reg.Applicant,
		reg.ContactAddr,
		reg.CompanyAddr,
		reg.Phone,
		reg.Note,
	); err != nil {
		return fmt.Errorf("failed to upsert registration: %w", err)
	}

	insert := `
	INSERT INTO certificates (id, registration_id, valid_date, status, product_name, sold_as, main_model, series_models, issuer)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, c := range reg.Certificates {
		if _, err = tx.ExecContext(ctx, insert,
			c.ID,
			reg.ID,
			c.ValidDate,
			c.Status,
			c.ProductName,
			c.SoldAs,
			c.MainModel,
			c.SeriesModels,
			c.Issuer,
		); err != nil {
			return fmt.Errorf("failed to insert certificate %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListByTaxID returns all registrations sharing a tax identifier, without
// their certificate sets. Results are ordered by mark code.
func (rdb *RegDB) ListByTaxID(ctx context.Context, taxID string) ([]model.Registration, error) {
	query := `
	SELECT id, tax_id, applicant, contact_addr, company_addr, phone, note, created_at, updated_at
	FROM registrations
	WHERE tax_id = ?
	ORDER BY id
	`

	rows, err := rdb.db.QueryContext(ctx, query, taxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		var createdAt, updatedAt string
		if err := rows.Scan(
			&reg.ID,
			&reg.TaxID,
			&reg.Applicant,
			&reg.ContactAddr,
			&reg.CompanyAddr,
			&reg.Phone,
			&reg.Note,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		reg.CreatedAt = parseTimestamp(createdAt)
		reg.UpdatedAt = parseTimestamp(updatedAt)
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

// MarkEntry is a mark code with its last-modified time, for the sitemap feed.
type MarkEntry struct {
	// ID is the registration mark code.
	ID string

	// UpdatedAt is when the record was last refreshed.
	UpdatedAt time.Time
}

// ListMarks returns every known mark code with its last update time,
// ordered by mark code.
func (rdb *RegDB) ListMarks(ctx context.Context) ([]MarkEntry, error) {
	query := `SELECT id, updated_at FROM registrations ORDER BY id`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	defer rows.Close()

	var entries []MarkEntry
	for rows.Next() {
		var entry MarkEntry
		var updatedAt string
		if err := rows.Scan(&entry.ID, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mark entry: %w", err)
		}
		entry.UpdatedAt = parseTimestamp(updatedAt)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ReplaceAuthorizations replaces the entire authorization table within one
// transaction: every existing row is deleted, then the new rows are
// inserted in batches of batchSize to bound statement size. The progress
// callback, if non-nil, is invoked after each batch with the number of
// rows written so far.
//
// Any failure rolls the transaction back, leaving the previous dataset
// intact. An empty rows slice still clears the table.
func (rdb *RegDB) ReplaceAuthorizations(ctx context.Context, auths []model.Authorization, batchSize int, progress func(done, total int)) (err error) {
	if batchSize <= 0 {
		return fmt.Errorf("invalid batch size %d: must be positive", batchSize)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM authorizations`); err != nil {
		return fmt.Errorf("failed to clear authorizations: %w", err)
	}

	for start := 0; start < len(auths); start += batchSize {
		end := start + batchSize
		if end > len(auths) {
			end = len(auths)
		}

		if err = insertAuthorizationBatch(ctx, tx, auths[start:end]); err != nil {
			return err
		}

		if progress != nil {
			progress(end, len(auths))
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// insertAuthorizationBatch inserts one batch with a multi-row INSERT.
func insertAuthorizationBatch(ctx context.Context, tx *sql.Tx, batch []model.Authorization) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO authorizations
	(id, certificate_id, authorizer_name, main_model, authorizee_tax_id, authorizee_name, authorizee_addr, authorizee_phone, valid_date)
	VALUES `)

	args := make([]any, 0, len(batch)*9)
	for i, a := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			a.ID,
			a.CertificateID,
			a.AuthorizerName,
			a.MainModel,
			a.AuthorizeeTaxID,
			a.AuthorizeeName,
			a.AuthorizeeAddr,
			a.AuthorizeePhone,
			a.ValidDate,
		)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert authorization batch: %w", err)
	}
	return nil
}

// ListAuthorizationsByCertificateIDs returns every authorization whose
// certificate number matches one of the given ids, ordered by id.
// Returns nil for an empty id list.
func (rdb *RegDB) ListAuthorizationsByCertificateIDs(ctx context.Context, certIDs []string) ([]model.Authorization, error) {
	if len(certIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(certIDs)-1) + "?"
	query := `
	SELECT id, certificate_id, authorizer_name, main_model, authorizee_tax_id, authorizee_name, authorizee_addr, authorizee_phone, valid_date, created_at
	FROM authorizations
	WHERE certificate_id IN (` + placeholders + `)
	ORDER BY id
	`

	args := make([]any, len(certIDs))
	for i, id := range certIDs {
		args[i] = id
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorizations: %w", err)
	}
	defer rows.Close()

	var auths []model.Authorization
	for rows.Next() {
		var a model.Authorization
		var createdAt string
		if err := rows.Scan(
			&a.ID,
			&a.CertificateID,
			&a.AuthorizerName,
			&a.MainModel,
			&a.AuthorizeeTaxID,
			&a.AuthorizeeName,
			&a.AuthorizeeAddr,
			&a.AuthorizeePhone,
			&a.ValidDate,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan authorization: %w", err)
		}
		a.CreatedAt = parseTimestamp(createdAt)
		auths = append(auths, a)
	}

	return auths, rows.Err()
}

// CountAuthorizations returns the number of authorization rows.
func (rdb *RegDB) CountAuthorizations(ctx context.Context) (int, error) {
	var count int
	if err := rdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authorizations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count authorizations: %w", err)
	}
	return count, nil
}

// SetUpdatedAt overrides a registration's updated_at timestamp.
// The refresh policy keys off this column; tests use this to age records
// into staleness without waiting out the freshness window.
func (rdb *RegDB) SetUpdatedAt(ctx context.Context, id string, updatedAt time.Time) error {
	_, err := rdb.db.ExecContext(ctx,
		`UPDATE registrations SET updated_at = ? WHERE id = ?`,
		updatedAt.UTC().Format("2006-01-02 15:04:05"), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set updated_at: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
