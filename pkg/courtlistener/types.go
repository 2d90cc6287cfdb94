// Package courtlistener defines the CourtListener REST API resources the
// crawler consumes: dockets, clusters, and opinions.
//
// Resources are immutable once fetched. A docket references its clusters
// and a cluster references its opinions by absolute resource URL; RefID
// extracts the opaque identifier from such a reference.
package courtlistener

import "strings"

// DefaultBaseURL is the production CourtListener REST API base.
const DefaultBaseURL = "https://www.courtlistener.com/api/rest/v4"

// Docket is a top-level case record. Clusters holds the ordered cluster
// reference URLs to traverse.
type Docket struct {
	ID               int64    `json:"id"`
	DocketNumber     string   `json:"docket_number"`
	CaseName         string   `json:"case_name"`
	CourtID          string   `json:"court_id"`
	DateFiled        string   `json:"date_filed"`
	DateTerminated   string   `json:"date_terminated"`
	NatureOfSuit     string   `json:"nature_of_suit"`
	Cause            string   `json:"cause"`
	JurisdictionType string   `json:"jurisdiction_type"`
	AbsoluteURL      string   `json:"absolute_url"`
	Clusters         []string `json:"clusters"`
}

// Cluster groups the opinions filed for a docket (e.g. majority plus
// dissent). SubOpinions holds the ordered opinion reference URLs.
type Cluster struct {
	ID            int64    `json:"id"`
	CaseName      string   `json:"case_name"`
	DateFiled     string   `json:"date_filed"`
	Judges        string   `json:"judges"`
	PanelStr      string   `json:"panel_str"`
	CitationCount int      `json:"citation_count"`
	SubOpinions   []string `json:"sub_opinions"`
}

// Opinion is a single authored legal document with its own text body.
type Opinion struct {
	ID                int64    `json:"id"`
	Type              string   `json:"type"`
	AuthorStr         string   `json:"author_str"`
	PlainText         string   `json:"plain_text"`
	HTMLWithCitations string   `json:"html_with_citations"`
	DownloadURL       string   `json:"download_url"`
	OpinionsCited     []string `json:"opinions_cited"`
}

// RefID extracts the resource identifier from a reference, which may be a
// full resource URL ("https://.../clusters/12345/") or already a bare ID.
func RefID(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
