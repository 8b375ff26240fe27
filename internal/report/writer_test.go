package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// sampleResult returns a result with one certificate and one authorization.
func sampleResult() *model.LookupResult {
	return &model.LookupResult{
		Registration: &model.Registration{
			ID:          "R45879",
			TaxID:       "82781974",
			Applicant:   "樂澤國際有限公司",
			ContactAddr: "桃園市桃園區中德里桃智路1號10樓",
			CompanyAddr: "桃園市桃園區中德里桃智路1號10樓",
			Phone:       "03-3674356#13",
			UpdatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Certificates: []model.Certificate{
				{
					ID:           "CI450068790054",
					ProductName:  "20W快充充電器(電源供應器)",
					MainModel:    "CH-866",
					SeriesModels: "CH-866A\nCH-866B",
					ValidDate:    "1130202",
					Status:       "期限到期失效",
					Issuer:       "經濟部標準檢驗局",
				},
			},
		},
		Authorizations: []model.Authorization{
			{
				ID:              "CI450078790054",
				CertificateID:   "CI450068790054",
				AuthorizerName:  "樂澤國際有限公司",
				AuthorizeeName:  "被授權商行",
				AuthorizeeTaxID: "12345678",
				MainModel:       "CH-866",
				ValidDate:       "112/02/02~113/02/02",
			},
		},
	}
}

// TestSimpleWriter tests the human-readable text format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(sampleResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"REGISTRATION R45879",
			"樂澤國際有限公司",
			"CI450068790054",
			"CH-866A, CH-866B",
			"RESALE AUTHORIZATIONS (1)",
			"被授權商行",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("omits the authorization section when empty", func(t *testing.T) {
		t.Parallel()

		result := sampleResult()
		result.Authorizations = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "RESALE AUTHORIZATIONS") {
			t.Error("empty authorization section should be omitted")
		}
	})

	t.Run("notes an empty certificate list", func(t *testing.T) {
		t.Parallel()

		result := sampleResult()
		result.Registration.Certificates = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "CERTIFICATES (0)") {
			t.Errorf("output should note zero certificates:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded model.LookupResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Registration.ID != "R45879" {
		t.Errorf("ID: got %q, expected %q", decoded.Registration.ID, "R45879")
	}
	if len(decoded.Authorizations) != 1 {
		t.Errorf("got %d authorizations, expected 1", len(decoded.Authorizations))
	}
}

// TestMarkdownWriter tests the Markdown format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders headings and tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Registration R45879",
			"## Certificates",
			"## Resale Authorizations",
			"`CI450068790054`",
			"| Applicant",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("omits the authorization table when empty", func(t *testing.T) {
		t.Parallel()

		result := sampleResult()
		result.Authorizations = nil

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Resale Authorizations") {
			t.Error("empty authorization table should be omitted")
		}
	})
}
