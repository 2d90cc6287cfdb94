// Package pagination implements cursor-following iteration over paginated
// CourtListener listings.
//
// CourtListener list endpoints return a JSON envelope with a "results"
// array and a "next" field carrying the URL of the following page (null on
// the final page). The pager follows that cursor lazily, one page per
// request, so memory stays bounded to a single page regardless of how
// deep the listing goes.
//
// Example usage:
//
//	pager := pagination.New(client, pacer, base+"/dockets/", params, 200)
//	dockets, err := pager.Collect(ctx)
//
// The pager:
//   - Emits each page's items before requesting the next page
//   - Checks the item cap before each page fetch, never mid-page
//   - Sends the caller's query params only on the first request (the
//     cursor URL is self-contained)
//   - Invokes the rate limiter before every page request after the first
//   - Ends the listing early on a fetch failure, keeping the prefix valid
package pagination
