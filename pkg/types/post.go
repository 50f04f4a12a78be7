package types

import "time"

// Post statuses.
const (
	PostStatusDraft   = "draft"
	PostStatusPending = "pending"
	PostStatusPublish = "publish"
	PostStatusPrivate = "private"
	PostStatusTrash   = "trash"
)

// validPostStatuses is the set of recognized post status values.
var validPostStatuses = map[string]bool{
	PostStatusDraft:   true,
	PostStatusPending: true,
	PostStatusPublish: true,
	PostStatusPrivate: true,
	PostStatusTrash:   true,
}

// IsValidPostStatus reports whether s is a recognized post status.
func IsValidPostStatus(s string) bool {
	return validPostStatuses[s]
}

// Post is a content record as the host store keeps it. PostType names the
// content type; Fields carries arbitrary typed field data (post meta).
type Post struct {
	ID       int64          `json:"id"`
	PostType string         `json:"post_type"`
	Title    string         `json:"title"`
	Name     string         `json:"name"` // URL slug.
	Status   string         `json:"status"`
	Content  string         `json:"content"`
	GUID     string         `json:"guid"` // UUID v7, assigned on creation.
	AuthorID int64          `json:"author_id"`
	Fields   map[string]any `json:"fields,omitempty"`
	Date     time.Time      `json:"date"`
	Modified time.Time      `json:"modified"`
}

// Validate checks the fields a store requires before persisting a post.
func (p *Post) Validate() error {
	if p.PostType == "" {
		return ErrInvalidData
	}
	if p.Status != "" && !IsValidPostStatus(p.Status) {
		return ErrInvalidData
	}
	return nil
}

// Field returns the value of a field and whether it is set.
func (p *Post) Field(key string) (any, bool) {
	if p.Fields == nil {
		return nil, false
	}
	v, ok := p.Fields[key]
	return v, ok
}

// SetField sets a field value, allocating the map on first use.
func (p *Post) SetField(key string, value any) {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	p.Fields[key] = value
}
