package box

// ItemRef is the minimal type/id/name triple Box embeds everywhere.
type ItemRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// File is a Box file record. Fields beyond the base representation are
// populated only when requested via the fields query parameter.
type File struct {
	Type        string      `json:"type"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Size        int64       `json:"size,omitempty"`
	Parent      *ItemRef    `json:"parent,omitempty"`
	SHA1        string      `json:"sha1,omitempty"`
	Extension   string      `json:"extension,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	ModifiedAt  string      `json:"modified_at,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Lock        *Lock       `json:"lock,omitempty"`
	SharedLink  *SharedLink `json:"shared_link,omitempty"`
	OwnedBy     *User       `json:"owned_by,omitempty"`
}

// Lock describes an active file lock.
type Lock struct {
	Type                string `json:"type,omitempty"`
	ID                  string `json:"id,omitempty"`
	CreatedBy           *User  `json:"created_by,omitempty"`
	ExpiresAt           string `json:"expires_at,omitempty"`
	IsDownloadPrevented bool   `json:"is_download_prevented,omitempty"`
}

// Folder is a Box folder record.
type Folder struct {
	Type           string          `json:"type"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Parent         *ItemRef        `json:"parent,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	ModifiedAt     string          `json:"modified_at,omitempty"`
	SharedLink     *SharedLink     `json:"shared_link,omitempty"`
	ItemCollection *ItemCollection `json:"item_collection,omitempty"`
}

// ItemCollection is a paged listing of folder entries.
type ItemCollection struct {
	TotalCount int       `json:"total_count"`
	Entries    []ItemRef `json:"entries"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

// SharedLink is a Box shared link on a file or folder.
type SharedLink struct {
	URL               string `json:"url,omitempty"`
	DownloadURL       string `json:"download_url,omitempty"`
	Access            string `json:"access,omitempty"`
	EffectiveAccess   string `json:"effective_access,omitempty"`
	IsPasswordEnabled bool   `json:"is_password_enabled,omitempty"`
	UnsharedAt        string `json:"unshared_at,omitempty"`
	DownloadCount     int    `json:"download_count,omitempty"`
	PreviewCount      int    `json:"preview_count,omitempty"`
}

// User is a Box user record.
type User struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Login     string `json:"login,omitempty"`
	Status    string `json:"status,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	SpaceUsed int64  `json:"space_used,omitempty"`
}

// UserCollection is a paged listing of users.
type UserCollection struct {
	TotalCount int    `json:"total_count"`
	Entries    []User `json:"entries"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

// SearchResult is one entry from the search endpoint. Box returns full
// item representations; we keep the commonly used subset.
type SearchResult struct {
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Parent      *ItemRef `json:"parent,omitempty"`
	ModifiedAt  string   `json:"modified_at,omitempty"`
}

// SearchResults is the paged search response.
type SearchResults struct {
	TotalCount int            `json:"total_count"`
	Entries    []SearchResult `json:"entries"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
}

// AIItem identifies a document the AI endpoints should ground on.
type AIItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// AIResponse is the answer returned by /ai/ask.
type AIResponse struct {
	Answer           string `json:"answer"`
	CreatedAt        string `json:"created_at,omitempty"`
	CompletionReason string `json:"completion_reason,omitempty"`
}
