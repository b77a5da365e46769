package scopus

import "strings"

// searchResponse is the top-level Scopus Search API payload.
type searchResponse struct {
	SearchResults searchResults `json:"search-results"`
}

type searchResults struct {
	TotalResults string  `json:"opensearch:totalResults"`
	Cursor       cursor  `json:"cursor"`
	Entries      []Entry `json:"entry"`
}

type cursor struct {
	Current string `json:"@current"`
	Next    string `json:"@next"`
}

// Entry is one document returned by the Search API in the COMPLETE view.
type Entry struct {
	EID             string `json:"eid"`
	DOI             string `json:"prism:doi"`
	Title           string `json:"dc:title"`
	Creator         string `json:"dc:creator"`
	Description     string `json:"dc:description"` // abstract
	PublicationName string `json:"prism:publicationName"`
	ISSN            string `json:"prism:issn"`
	CoverDate       string `json:"prism:coverDate"`
	AuthKeywords    string `json:"authkeywords"`

	// Error is set on the placeholder entry Scopus returns for an empty result set.
	Error string `json:"error"`
}

// Keywords splits the pipe separated author keywords.
func (e Entry) Keywords() []string {
	if strings.TrimSpace(e.AuthKeywords) == "" {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(e.AuthKeywords, "|") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Page is one page of search results.
type Page struct {
	Entries []Entry
	Total   int
	// NextCursor is empty on the last page.
	NextCursor string
}
