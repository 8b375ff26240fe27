package model

import (
	"strings"
	"time"
)

// Registration is a vendor record from the BSMI registration lookup service.
// A Registration is created on the first successful scrape of its mark code
// and fully replaced on refresh; it is never partially updated.
type Registration struct {
	// ID is the six-character registration mark code, always uppercase.
	ID string `json:"id"`

	// TaxID is the vendor's unified business number (統編).
	TaxID string `json:"taxId"`

	// Applicant is the name of the applicant (申請人).
	Applicant string `json:"applicant"`

	// ContactAddr is the contact address (聯絡地址).
	ContactAddr string `json:"contactAddr"`

	// CompanyAddr is the registered company address (公司地址).
	CompanyAddr string `json:"companyAddr"`

	// Phone is the contact phone number (電話).
	Phone string `json:"phone"`

	// Note is the free-text vendor note (廠商資料備註).
	Note string `json:"note"`

	// CreatedAt is when the record was first stored.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the record was last scraped and stored.
	// The cache/refresh policy compares this against the freshness window.
	UpdatedAt time.Time `json:"updatedAt"`

	// Certificates are the product certificates owned by this registration.
	// The set is always replaced as a whole, never merged.
	Certificates []Certificate `json:"certificates"`
}

// IsStale reports whether the record is older than the given freshness
// window at the given instant.
func (r *Registration) IsStale(window time.Duration, now time.Time) bool {
	return now.Sub(r.UpdatedAt) > window
}

// CertificateIDs returns the certificate numbers owned by this registration.
// The result is used to join Authorization records, which reference
// certificates loosely by number rather than by foreign key.
func (r *Registration) CertificateIDs() []string {
	ids := make([]string, 0, len(r.Certificates))
	for _, c := range r.Certificates {
		ids = append(ids, c.ID)
	}
	return ids
}

// Certificate is a product certificate scoped to exactly one Registration.
type Certificate struct {
	// ID is the certificate number (證書編號).
	ID string `json:"id"`

	// RegistrationID is the mark code of the owning Registration.
	RegistrationID string `json:"registrationId"`

	// ValidDate is the validity date exactly as printed by the source
	// (a Republic of China calendar string such as "1130202"). It is
	// stored raw rather than parsed to a date type.
	ValidDate string `json:"validDate"`

	// Status is the certificate status text (e.g. 期限到期失效).
	Status string `json:"status"`

	// ProductName is the Chinese product name (產品中文名稱).
	ProductName string `json:"productName"`

	// SoldAs is the alternate seller name (以他人名義銷售), may be empty.
	SoldAs string `json:"soldAs"`

	// MainModel is the main model number (主型式).
	MainModel string `json:"mainModel"`

	// SeriesModels holds secondary model numbers joined by newlines.
	// Empty when the certificate covers only the main model.
	SeriesModels string `json:"seriesModels"`

	// Issuer is the issuing agency (發證單位).
	Issuer string `json:"issuer"`
}

// SeriesModelList returns the series models as a slice, with empty lines
// removed. Returns nil when there are no series models.
func (c *Certificate) SeriesModelList() []string {
	if c.SeriesModels == "" {
		return nil
	}

	var models []string
	for _, line := range strings.Split(c.SeriesModels, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			models = append(models, line)
		}
	}
	return models
}

// LookupResult bundles a Registration with the Authorization records that
// reference its certificates. This is the shape returned by the lookup
// endpoint and rendered by the report writers.
type LookupResult struct {
	Registration   *Registration   `json:"registration"`
	Authorizations []Authorization `json:"authorizations"`
}
