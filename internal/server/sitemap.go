package server

import (
	"encoding/xml"
	"net/http"
)

// urlSet is the sitemap protocol document root.
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapURL is one sitemap entry.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// sitemapNamespace is the sitemap protocol schema namespace.
const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// handleSitemap serves every known mark code as an absolute URL.
// The route answers 404 unless a public base URL is configured, since
// relative sitemap entries are useless to crawlers.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if s.baseURL == "" {
		http.NotFound(w, r)
		return
	}

	entries, err := s.store.ListMarks(r.Context())
	if err != nil {
		s.logger.Error("sitemap listing failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	set := urlSet{XMLNS: sitemapNamespace, URLs: make([]sitemapURL, 0, len(entries))}
	for _, entry := range entries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     s.baseURL + "/bsmi/" + entry.ID,
			LastMod: entry.UpdatedAt.Format("2006-01-02"),
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		s.logger.Error("failed to encode sitemap", "error", err)
	}
}
