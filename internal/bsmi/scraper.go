package bsmi

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// DefaultLookupURL is the public BSMI registration lookup form.
const DefaultLookupURL = "https://civil.bsmi.gov.tw/bsmi_pqn/pqn/uqi5102f.do"

const (
	// queryModeAll is the fixed query-mode flag the lookup form expects.
	queryModeAll = "queryAll"

	// vendorDataMarker is present in the response body whenever the
	// lookup found a vendor. A successful response without it means the
	// mark code simply has no record.
	vendorDataMarker = "廠商資料"

	// certSectionMarker locates the certificate list panel heading.
	// The stray quote and spacing are faithful to the page's markup.
	certSectionMarker = `panel-heading ">證書資料`
)

// Patterns matching the lookup page's layout. Each vendor field sits as a
// label inside a <p> or <label> tag, with the value in a <p> inside the
// following <div>. The certificate list is a sequence of row divs with
// five bootstrap grid columns per row.
var (
	rowSplitPattern = regexp.MustCompile(`\n\s*<div\s+class='row'>`)
	colPattern      = regexp.MustCompile(`(?s)<div class="col-xs-6 col-sm-\d+ col-md-\d+ col-lg-\d+">\s*(.*?)\s*</div>`)
	strongPattern   = regexp.MustCompile(`(?s)<strong>\s*(.*?)\s*</strong>`)

	taxIDPattern       = vendorFieldPattern(`統編`)
	applicantPattern   = vendorFieldPattern(`申請人`)
	contactAddrPattern = vendorFieldPattern(`聯絡地址`)
	companyAddrPattern = vendorFieldPattern(`公司地址\s*`)
	phonePattern       = vendorFieldPattern(`電話`)
	notePattern        = vendorFieldPattern(`廠商資料備註`)
)

// vendorFieldPattern builds the label-anchored pattern for one vendor
// field. The label argument is a pattern fragment, not a literal, because
// some labels carry trailing whitespace in the page markup.
func vendorFieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + label + `[：:]\s*</(?:p|label)>\s*(?:</div>\s*)?<div[^>]*>\s*<p>(.*?)</p>`)
}

// Scraper fetches registration records from the BSMI lookup service.
// It is a pure fetch-and-parse component: no retries, no caching, no
// persistence. One call issues exactly one POST.
type Scraper struct {
	// client is the HTTP client used for the lookup form.
	client *Client

	// lookupURL is the lookup form endpoint.
	lookupURL string
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithLookupURL overrides the lookup form endpoint.
// Used by tests to point the scraper at a local server.
func WithLookupURL(u string) ScraperOption {
	return func(s *Scraper) {
		s.lookupURL = u
	}
}

// NewScraper creates a Scraper using the given client.
func NewScraper(client *Client, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		client:    client,
		lookupURL: DefaultLookupURL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchRecord looks up a registration mark on the BSMI service.
//
// It returns:
//   - (record, nil) when the mark exists; the record id is the uppercased
//     mark code and the certificate list holds every well-formed row
//   - (nil, nil) when the service reports no such vendor — not found is a
//     first-class result, not an error
//   - (nil, *FetchError) on a non-success HTTP status
//
// The mark's format has already been validated by model.NewMark; the
// scraper only splits it into the type code and number the form expects.
func (s *Scraper) FetchRecord(ctx context.Context, mark model.Mark) (*model.Registration, error) {
	form := url.Values{
		"state":     {queryModeAll},
		"q_regType": {mark.Type()},
		"q_regNo":   {mark.Number()},
	}

	body, err := s.client.PostForm(ctx, s.lookupURL, form)
	if err != nil {
		return nil, err
	}

	if !strings.Contains(body, vendorDataMarker) {
		return nil, nil
	}

	record := parseVendor(body)
	record.ID = mark.String()
	record.Certificates = parseCertificates(body, mark.String())
	return record, nil
}

// parseVendor extracts the six vendor scalar fields from the page.
// A missing label yields an empty field, never an error.
func parseVendor(page string) *model.Registration {
	return &model.Registration{
		TaxID:       vendorField(page, taxIDPattern),
		Applicant:   vendorField(page, applicantPattern),
		ContactAddr: vendorField(page, contactAddrPattern),
		CompanyAddr: vendorField(page, companyAddrPattern),
		Phone:       vendorField(page, phonePattern),
		Note:        vendorField(page, notePattern),
	}
}

// vendorField returns the first trimmed match for a vendor field pattern.
func vendorField(page string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseCertificates extracts the certificate list for a registration.
//
// The list section is located by its panel heading; an absent section
// means the registration has no certificates. Each row yields five grid
// columns. Column 0 decomposes on <br> into certificate number, validity
// date, and status; a row underflowing that shape leaves the missing
// pieces empty. Column 3 holds the main model in a <strong> element with
// series models as the remaining <br>-separated lines. Rows without a
// certificate number are skipped entirely.
func parseCertificates(page, registrationID string) []model.Certificate {
	start := strings.Index(page, certSectionMarker)
	if start == -1 {
		return nil
	}
	section := page[start:]

	rows := rowSplitPattern.Split(section, -1)
	if len(rows) < 2 {
		return nil
	}

	var certs []model.Certificate
	for _, row := range rows[1:] {
		cols := rowColumns(row)
		if len(cols) < 4 {
			continue
		}

		certID, validDate, status := splitCertColumn(cols[0])
		if certID == "" {
			continue
		}

		mainModel, seriesModels := splitModelColumn(cols[3])

		issuer := ""
		if len(cols) > 4 {
			issuer = stripTags(cols[4])
		}

		certs = append(certs, model.Certificate{
			ID:             certID,
			RegistrationID: registrationID,
			ValidDate:      validDate,
			Status:         status,
			ProductName:    stripTags(cols[1]),
			SoldAs:         stripTags(cols[2]),
			MainModel:      mainModel,
			SeriesModels:   seriesModels,
			Issuer:         issuer,
		})
	}

	return certs
}

// rowColumns returns the trimmed contents of a row's grid columns.
func rowColumns(row string) []string {
	matches := colPattern.FindAllStringSubmatch(row, -1)
	cols := make([]string, 0, len(matches))
	for _, m := range matches {
		cols = append(cols, strings.TrimSpace(m[1]))
	}
	return cols
}

// splitCertColumn decomposes column 0 into certificate number, validity
// date, and status. Any of the three may be empty when the column
// underflows the expected <br>-separated shape.
func splitCertColumn(col string) (certID, validDate, status string) {
	parts := splitLineBreaks(col)
	if len(parts) > 0 {
		certID = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		validDate = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		status = strings.TrimSpace(parts[2])
	}
	return certID, validDate, status
}

// splitModelColumn decomposes column 3 into the main model (the <strong>
// element) and the newline-joined series models that follow it, with
// empty lines filtered out.
func splitModelColumn(col string) (mainModel, seriesModels string) {
	if m := strongPattern.FindStringSubmatch(col); m != nil {
		mainModel = strings.TrimSpace(m[1])
	}

	// Remove the first <strong> element, then treat the remaining
	// <br>-separated lines as series models.
	rest := col
	if loc := strongPattern.FindStringIndex(col); loc != nil {
		rest = col[:loc[0]] + col[loc[1]:]
	}

	var series []string
	for _, line := range splitLineBreaks(rest) {
		if s := stripTags(line); s != "" {
			series = append(series, s)
		}
	}
	return mainModel, strings.Join(series, "\n")
}
