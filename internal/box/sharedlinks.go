package box

import (
	"context"
	"net/url"
)

// SharedLinkOptions configures link creation.
type SharedLinkOptions struct {
	// Access is "open", "company" or "collaborators". Empty lets Box
	// apply the enterprise default.
	Access      string
	Password    string
	CanDownload *bool
}

func (o SharedLinkOptions) payload() map[string]any {
	link := map[string]any{}
	if o.Access != "" {
		link["access"] = o.Access
	}
	if o.Password != "" {
		link["password"] = o.Password
	}
	if o.CanDownload != nil {
		link["permissions"] = map[string]any{"can_download": *o.CanDownload}
	}
	return link
}

// CreateFileSharedLink creates or updates the shared link on a file.
func (c *Client) CreateFileSharedLink(ctx context.Context, fileID string, opts SharedLinkOptions) (*SharedLink, error) {
	var file File
	query := url.Values{"fields": {"shared_link"}}
	body := map[string]any{"shared_link": opts.payload()}
	if err := c.put(ctx, "/files/"+fileID, query, body, &file); err != nil {
		return nil, err
	}
	return file.SharedLink, nil
}

// GetFileSharedLink returns the file's shared link, or nil when none is set.
func (c *Client) GetFileSharedLink(ctx context.Context, fileID string) (*SharedLink, error) {
	var file File
	if err := c.get(ctx, "/files/"+fileID, url.Values{"fields": {"shared_link"}}, &file); err != nil {
		return nil, err
	}
	return file.SharedLink, nil
}

// RemoveFileSharedLink deletes the file's shared link.
func (c *Client) RemoveFileSharedLink(ctx context.Context, fileID string) error {
	query := url.Values{"fields": {"shared_link"}}
	return c.put(ctx, "/files/"+fileID, query, map[string]any{"shared_link": nil}, nil)
}

// CreateFolderSharedLink creates or updates the shared link on a folder.
func (c *Client) CreateFolderSharedLink(ctx context.Context, folderID string, opts SharedLinkOptions) (*SharedLink, error) {
	var folder Folder
	query := url.Values{"fields": {"shared_link"}}
	body := map[string]any{"shared_link": opts.payload()}
	if err := c.put(ctx, "/folders/"+folderID, query, body, &folder); err != nil {
		return nil, err
	}
	return folder.SharedLink, nil
}

// GetFolderSharedLink returns the folder's shared link, or nil when none
// is set.
func (c *Client) GetFolderSharedLink(ctx context.Context, folderID string) (*SharedLink, error) {
	var folder Folder
	if err := c.get(ctx, "/folders/"+folderID, url.Values{"fields": {"shared_link"}}, &folder); err != nil {
		return nil, err
	}
	return folder.SharedLink, nil
}

// RemoveFolderSharedLink deletes the folder's shared link.
func (c *Client) RemoveFolderSharedLink(ctx context.Context, folderID string) error {
	query := url.Values{"fields": {"shared_link"}}
	return c.put(ctx, "/folders/"+folderID, query, map[string]any{"shared_link": nil}, nil)
}
