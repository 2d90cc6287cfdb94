// Package record assembles the flattened crawl output.
//
// A CrawlRecord is the denormalized union of selected docket, cluster,
// and opinion fields, keyed uniquely by opinion ID. One record exists per
// opinion that resolved successfully through all three hierarchy levels.
package record

import (
	"fmt"
	"strconv"

	"github.com/caselawlab/courtcrawl/pkg/courtlistener"
)

// publicSiteURL is the base for human-facing cluster links in records.
const publicSiteURL = "https://www.courtlistener.com"

// CrawlRecord is one flattened output row. Optional source fields default
// to the empty string or zero count, never null.
type CrawlRecord struct {
	// Docket information
	DocketID         int64  `json:"docket_id"`
	DocketNumber     string `json:"docket_number"`
	CaseName         string `json:"case_name"`
	CourtID          string `json:"court_id"`
	DateFiled        string `json:"date_filed"`
	DateTerminated   string `json:"date_terminated"`
	NatureOfSuit     string `json:"nature_of_suit"`
	Cause            string `json:"cause"`
	JurisdictionType string `json:"jurisdiction_type"`

	// Cluster information
	ClusterID        int64  `json:"cluster_id"`
	ClusterDateFiled string `json:"cluster_date_filed"`
	ClusterCaseName  string `json:"cluster_case_name"`
	Judges           string `json:"judges"`
	PanelStr         string `json:"panel_str"`
	CitationCount    int    `json:"citation_count"`

	// Opinion information
	OpinionID          int64  `json:"opinion_id"`
	OpinionType        string `json:"opinion_type"`
	AuthorStr          string `json:"author_str"`
	OpinionTextHTML    string `json:"opinion_text_html"`
	OpinionTextPlain   string `json:"opinion_text_plain"`
	DownloadURL        string `json:"download_url"`
	OpinionsCitedCount int    `json:"opinions_cited_count"`

	// URLs for reference
	AbsoluteURL string `json:"absolute_url"`
	ClusterURL  string `json:"cluster_url"`
}

// Assemble merges one docket/cluster/opinion triple into a CrawlRecord.
// It is a pure function: the same three inputs always yield the same
// record.
func Assemble(docket *courtlistener.Docket, cluster *courtlistener.Cluster, opinion *courtlistener.Opinion) CrawlRecord {
	return CrawlRecord{
		DocketID:         docket.ID,
		DocketNumber:     docket.DocketNumber,
		CaseName:         docket.CaseName,
		CourtID:          docket.CourtID,
		DateFiled:        docket.DateFiled,
		DateTerminated:   docket.DateTerminated,
		NatureOfSuit:     docket.NatureOfSuit,
		Cause:            docket.Cause,
		JurisdictionType: docket.JurisdictionType,

		ClusterID:        cluster.ID,
		ClusterDateFiled: cluster.DateFiled,
		ClusterCaseName:  cluster.CaseName,
		Judges:           cluster.Judges,
		PanelStr:         cluster.PanelStr,
		CitationCount:    cluster.CitationCount,

		OpinionID:          opinion.ID,
		OpinionType:        opinion.Type,
		AuthorStr:          opinion.AuthorStr,
		OpinionTextHTML:    opinion.HTMLWithCitations,
		OpinionTextPlain:   opinion.PlainText,
		DownloadURL:        opinion.DownloadURL,
		OpinionsCitedCount: len(opinion.OpinionsCited),

		AbsoluteURL: docket.AbsoluteURL,
		ClusterURL:  fmt.Sprintf("%s/opinion/%d/", publicSiteURL, cluster.ID),
	}
}

// Header returns the fixed CSV column order, the union of all CrawlRecord
// fields.
func Header() []string {
	return []string{
		"docket_id",
		"docket_number",
		"case_name",
		"court_id",
		"date_filed",
		"date_terminated",
		"nature_of_suit",
		"cause",
		"jurisdiction_type",
		"cluster_id",
		"cluster_date_filed",
		"cluster_case_name",
		"judges",
		"panel_str",
		"citation_count",
		"opinion_id",
		"opinion_type",
		"author_str",
		"opinion_text_html",
		"opinion_text_plain",
		"download_url",
		"opinions_cited_count",
		"absolute_url",
		"cluster_url",
	}
}

// Row returns the record's values in Header order.
func (r CrawlRecord) Row() []string {
	return []string{
		strconv.FormatInt(r.DocketID, 10),
		r.DocketNumber,
		r.CaseName,
		r.CourtID,
		r.DateFiled,
		r.DateTerminated,
		r.NatureOfSuit,
		r.Cause,
		r.JurisdictionType,
		strconv.FormatInt(r.ClusterID, 10),
		r.ClusterDateFiled,
		r.ClusterCaseName,
		r.Judges,
		r.PanelStr,
		strconv.Itoa(r.CitationCount),
		strconv.FormatInt(r.OpinionID, 10),
		r.OpinionType,
		r.AuthorStr,
		r.OpinionTextHTML,
		r.OpinionTextPlain,
		r.DownloadURL,
		strconv.Itoa(r.OpinionsCitedCount),
		r.AbsoluteURL,
		r.ClusterURL,
	}
}
