package box

import (
	"context"
	"net/url"
	"strconv"
)

// RootFolderID addresses the account's root folder ("All Files").
const RootFolderID = "0"

// GetFolder fetches a folder record.
func (c *Client) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	var folder Folder
	if err := c.get(ctx, "/folders/"+folderID, nil, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// ListFolderItems pages through a folder's entries. A limit of 0 uses the
// Box default page size.
func (c *Client) ListFolderItems(ctx context.Context, folderID string, limit, offset int) (*ItemCollection, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	var items ItemCollection
	if err := c.get(ctx, "/folders/"+folderID+"/items", query, &items); err != nil {
		return nil, err
	}
	return &items, nil
}

// CreateFolder creates a folder named name under parentID.
func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	body := map[string]any{
		"name":   name,
		"parent": map[string]string{"id": parentID},
	}
	var folder Folder
	if err := c.post(ctx, "/folders", body, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolder trashes a folder. Non-empty folders require recursive.
func (c *Client) DeleteFolder(ctx context.Context, folderID string, recursive bool) error {
	query := url.Values{}
	if recursive {
		query.Set("recursive", "true")
	}
	return c.delete(ctx, "/folders/"+folderID, query)
}
