package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// MarkdownWriter outputs lookup results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.LookupResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeVendor(md, result.Registration)
	w.writeCertificates(md, result.Registration.Certificates)
	w.writeAuthorizations(md, result.Authorizations)

	return len(md.String()), md.Build()
}

// writeVendor writes the vendor information table.
func (w *MarkdownWriter) writeVendor(md *markdown.Markdown, reg *model.Registration) {
	md.H1("Registration " + reg.ID)
	md.PlainText("")

	rows := [][]string{
		{"Applicant", reg.Applicant},
		{"Tax ID", reg.TaxID},
		{"Contact Address", reg.ContactAddr},
		{"Company Address", reg.CompanyAddr},
		{"Phone", reg.Phone},
	}
	if reg.Note != "" {
		rows = append(rows, []string{"Note", reg.Note})
	}
	if !reg.UpdatedAt.IsZero() {
		rows = append(rows, []string{"Last Updated", reg.UpdatedAt.Format("2006-01-02 15:04:05 MST")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCertificates writes the certificate table.
func (w *MarkdownWriter) writeCertificates(md *markdown.Markdown, certs []model.Certificate) {
	md.H2("Certificates")
	md.PlainText("")

	if len(certs) == 0 {
		md.PlainText("No certificates on record.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		rows = append(rows, []string{
			"`" + c.ID + "`",
			c.ProductName,
			c.MainModel,
			strings.Join(c.SeriesModelList(), ", "),
			c.ValidDate,
			c.Status,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Certificate", "Product", "Main Model", "Series", "Valid Until", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAuthorizations writes the resale authorization table.
func (w *MarkdownWriter) writeAuthorizations(md *markdown.Markdown, auths []model.Authorization) {
	if len(auths) == 0 {
		return
	}

	md.H2("Resale Authorizations")
	md.PlainText("")

	rows := make([][]string, 0, len(auths))
	for _, a := range auths {
		rows = append(rows, []string{
			"`" + a.ID + "`",
			"`" + a.CertificateID + "`",
			a.AuthorizeeName,
			a.AuthorizeeTaxID,
			a.MainModel,
			a.ValidDate,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Authorization", "Certificate", "Authorizee", "Tax ID", "Model", "Valid"},
		Rows:   rows,
	})
	md.PlainText("")
}
