package box

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// SearchOptions narrows a content search. Zero values mean no filter.
type SearchOptions struct {
	// Type restricts results to "file", "folder" or "web_link".
	Type string
	// FileExtensions filters by extension without the leading dot.
	FileExtensions []string
	// AncestorFolderIDs restricts the search to subtrees.
	AncestorFolderIDs []string
	// ContentTypes selects which item properties the query matches
	// (name, description, file_content, comments, tag).
	ContentTypes []string
	Limit        int
	Offset       int
}

// Search runs a keyword search across the authorized content.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResults, error) {
	params := url.Values{"query": {query}}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if len(opts.FileExtensions) > 0 {
		params.Set("file_extensions", strings.Join(opts.FileExtensions, ","))
	}
	if len(opts.AncestorFolderIDs) > 0 {
		params.Set("ancestor_folder_ids", strings.Join(opts.AncestorFolderIDs, ","))
	}
	if len(opts.ContentTypes) > 0 {
		params.Set("content_types", strings.Join(opts.ContentTypes, ","))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var results SearchResults
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}
