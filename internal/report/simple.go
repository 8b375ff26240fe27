package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.LookupResult) (int, error) {
	var sb strings.Builder

	w.writeVendor(&sb, result.Registration)
	w.writeCertificates(&sb, result.Registration.Certificates)
	w.writeAuthorizations(&sb, result.Authorizations)

	return w.output.Write([]byte(sb.String()))
}

// writeVendor writes the vendor information header.
func (w *SimpleWriter) writeVendor(sb *strings.Builder, reg *model.Registration) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  REGISTRATION %s\n", reg.ID))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Applicant:       %s\n", reg.Applicant))
	sb.WriteString(fmt.Sprintf("Tax ID:          %s\n", reg.TaxID))
	sb.WriteString(fmt.Sprintf("Contact Address: %s\n", reg.ContactAddr))
	sb.WriteString(fmt.Sprintf("Company Address: %s\n", reg.CompanyAddr))
	sb.WriteString(fmt.Sprintf("Phone:           %s\n", reg.Phone))
	if reg.Note != "" {
		sb.WriteString(fmt.Sprintf("Note:            %s\n", reg.Note))
	}
	if !reg.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Last Updated:    %s\n", reg.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString("\n")
}

// writeCertificates writes the certificate list section.
func (w *SimpleWriter) writeCertificates(sb *strings.Builder, certs []model.Certificate) {
	sb.WriteString(fmt.Sprintf("CERTIFICATES (%d)\n", len(certs)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(certs) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	for _, c := range certs {
		sb.WriteString(fmt.Sprintf("\n  %s  [%s]\n", c.ID, c.Status))
		sb.WriteString(fmt.Sprintf("    Product:     %s\n", c.ProductName))
		sb.WriteString(fmt.Sprintf("    Main Model:  %s\n", c.MainModel))
		if series := c.SeriesModelList(); len(series) > 0 {
			sb.WriteString(fmt.Sprintf("    Series:      %s\n", strings.Join(series, ", ")))
		}
		if c.SoldAs != "" {
			sb.WriteString(fmt.Sprintf("    Sold As:     %s\n", c.SoldAs))
		}
		sb.WriteString(fmt.Sprintf("    Valid Until: %s\n", c.ValidDate))
		sb.WriteString(fmt.Sprintf("    Issuer:      %s\n", c.Issuer))
	}
	sb.WriteString("\n")
}

// writeAuthorizations writes the resale authorization section.
// The section is omitted entirely when no authorizations reference the
// registration's certificates.
func (w *SimpleWriter) writeAuthorizations(sb *strings.Builder, auths []model.Authorization) {
	if len(auths) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("RESALE AUTHORIZATIONS (%d)\n", len(auths)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, a := range auths {
		sb.WriteString(fmt.Sprintf("\n  %s (certificate %s)\n", a.ID, a.CertificateID))
		sb.WriteString(fmt.Sprintf("    Authorizer:  %s\n", a.AuthorizerName))
		sb.WriteString(fmt.Sprintf("    Authorizee:  %s (%s)\n", a.AuthorizeeName, a.AuthorizeeTaxID))
		sb.WriteString(fmt.Sprintf("    Model:       %s\n", a.MainModel))
		sb.WriteString(fmt.Sprintf("    Valid:       %s\n", a.ValidDate))
	}
	sb.WriteString("\n")
}
