package crawler

// Stats summarizes one crawl run: how many dockets were processed, how
// many clusters and opinions were attempted versus skipped, and how many
// records were produced.
type Stats struct {
	DocketsProcessed  int `json:"dockets_processed"`
	ClustersAttempted int `json:"clusters_attempted"`
	ClustersSkipped   int `json:"clusters_skipped"`
	OpinionsAttempted int `json:"opinions_attempted"`
	OpinionsSkipped   int `json:"opinions_skipped"`
	OpinionsEmpty     int `json:"opinions_empty"`
	Records           int `json:"records"`
}

// Stats returns a snapshot of the run counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// logSummary emits the user-visible end-of-run summary.
func (c *Crawler) logSummary() {
	s := c.Stats()
	c.logger.Info().
		Int("dockets_processed", s.DocketsProcessed).
		Int("clusters_attempted", s.ClustersAttempted).
		Int("clusters_skipped", s.ClustersSkipped).
		Int("opinions_attempted", s.OpinionsAttempted).
		Int("opinions_skipped", s.OpinionsSkipped).
		Int("opinions_empty", s.OpinionsEmpty).
		Int("records", s.Records).
		Msg("Crawl summary")
}
