package box

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
)

const fileFields = "id,name,description,size,parent,sha1,extension,created_at,modified_at,tags,lock,shared_link,owned_by"

// GetFile fetches a file record with the extended field set.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	query := url.Values{"fields": {fileFields}}
	if err := c.get(ctx, "/files/"+fileID, query, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// FileTextContent downloads a file's content as text. Box serves the
// representation for document types and the raw bytes otherwise.
func (c *Client) FileTextContent(ctx context.Context, fileID string) (string, error) {
	data, err := c.raw(ctx, "/files/"+fileID+"/content")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CopyFile copies fileID into destParentID, optionally renaming the copy.
func (c *Client) CopyFile(ctx context.Context, fileID, destParentID, newName string) (*File, error) {
	body := map[string]any{"parent": map[string]string{"id": destParentID}}
	if newName != "" {
		body["name"] = newName
	}
	var file File
	if err := c.post(ctx, "/files/"+fileID+"/copy", body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// MoveFile reparents fileID under destParentID.
func (c *Client) MoveFile(ctx context.Context, fileID, destParentID string) (*File, error) {
	return c.updateFile(ctx, fileID, map[string]any{
		"parent": map[string]string{"id": destParentID},
	})
}

// RenameFile renames fileID.
func (c *Client) RenameFile(ctx context.Context, fileID, newName string) (*File, error) {
	return c.updateFile(ctx, fileID, map[string]any{"name": newName})
}

// SetFileDescription replaces the file description.
func (c *Client) SetFileDescription(ctx context.Context, fileID, description string) (*File, error) {
	return c.updateFile(ctx, fileID, map[string]any{"description": description})
}

// DeleteFile moves the file to the trash.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.delete(ctx, "/files/"+fileID, nil)
}

// LockFile places a lock on the file.
func (c *Client) LockFile(ctx context.Context, fileID string, preventDownload bool) (*File, error) {
	return c.updateFile(ctx, fileID, map[string]any{
		"lock": map[string]any{
			"type":                  "lock",
			"is_download_prevented": preventDownload,
		},
	})
}

// UnlockFile removes the lock from the file.
func (c *Client) UnlockFile(ctx context.Context, fileID string) (*File, error) {
	return c.updateFile(ctx, fileID, map[string]any{"lock": nil})
}

// ListFileTags returns the tags on a file.
func (c *Client) ListFileTags(ctx context.Context, fileID string) ([]string, error) {
	var file File
	if err := c.get(ctx, "/files/"+fileID, url.Values{"fields": {"tags"}}, &file); err != nil {
		return nil, err
	}
	return file.Tags, nil
}

// AddFileTag appends a tag, leaving existing tags in place. Adding a tag
// that is already present is a no-op.
func (c *Client) AddFileTag(ctx context.Context, fileID, tag string) ([]string, error) {
	tags, err := c.ListFileTags(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(tags, tag) {
		return tags, nil
	}
	updated, err := c.setFileTags(ctx, fileID, append(tags, tag))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveFileTag removes a tag if present.
func (c *Client) RemoveFileTag(ctx context.Context, fileID, tag string) ([]string, error) {
	tags, err := c.ListFileTags(ctx, fileID)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(tags, tag)
	if idx < 0 {
		return tags, nil
	}
	return c.setFileTags(ctx, fileID, slices.Delete(tags, idx, idx+1))
}

func (c *Client) setFileTags(ctx context.Context, fileID string, tags []string) ([]string, error) {
	var file File
	query := url.Values{"fields": {"tags"}}
	if err := c.put(ctx, "/files/"+fileID, query, map[string]any{"tags": tags}, &file); err != nil {
		return nil, err
	}
	return file.Tags, nil
}

func (c *Client) updateFile(ctx context.Context, fileID string, body map[string]any) (*File, error) {
	var file File
	query := url.Values{"fields": {fileFields}}
	if err := c.put(ctx, "/files/"+fileID, query, body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// UploadFile uploads content as a new file named name under parentID.
func (c *Client) UploadFile(ctx context.Context, parentID, name string, content []byte) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	attrs, err := json.Marshal(map[string]any{
		"name":   name,
		"parent": map[string]string{"id": parentID},
	})
	if err != nil {
		return nil, err
	}
	if err := mw.WriteField("attributes", string(attrs)); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/files/content", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(libraryHeader, libraryValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseAPIError(resp)
	}

	// Uploads answer with a one-entry file collection.
	var result struct {
		Entries []File `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("upload response contained no file entries")
	}
	return &result.Entries[0], nil
}
