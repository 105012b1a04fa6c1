package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// DocumentCategory groups documents (tickets, insurance, ...).
type DocumentCategory struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Color       string     `json:"color"`
	IsDefault   bool       `json:"is_default"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// DocumentComment is a comment thread entry on a document.
type DocumentComment struct {
	ID        int64              `json:"id"`
	Document  int64              `json:"document"`
	Author    domain.Participant `json:"author"`
	Content   string             `json:"content"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
}

// Document is a file attached to a trip.
type Document struct {
	ID                  int64              `json:"id"`
	Trip                domain.TripID      `json:"trip"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	File                string             `json:"file"`
	FileURL             string             `json:"file_url,omitempty"`
	FileType            string             `json:"file_type"`
	FileSize            int64              `json:"file_size"`
	FileExtension       string             `json:"file_extension,omitempty"`
	Visibility          string             `json:"visibility"`
	Category            *DocumentCategory  `json:"category,omitempty"`
	CustomTags          []string           `json:"custom_tags"`
	UploadedBy          domain.Participant `json:"uploaded_by"`
	Comments            []DocumentComment  `json:"comments"`
	CommentCount        int                `json:"comment_count"`
	AutoDeleteAfterTrip bool               `json:"auto_delete_after_trip"`
	DeleteDaysAfterTrip int                `json:"delete_days_after_trip"`
	CreatedAt           *time.Time         `json:"created_at,omitempty"`
	UpdatedAt           *time.Time         `json:"updated_at,omitempty"`
}

// DocumentUpload creates a document from a file.
type DocumentUpload struct {
	Title               string    `validate:"required"`
	Description         string    `validate:"-"`
	Filename            string    `validate:"required"`
	Content             io.Reader `validate:"required"`
	Visibility          string    `validate:"oneof=private shared"`
	CategoryID          int64     `validate:"gte=0"`
	CustomTags          []string  `validate:"-"`
	AutoDeleteAfterTrip *bool     `validate:"-"`
	DeleteDaysAfterTrip int       `validate:"gte=0"`
}

// DocumentUpdate changes document metadata. Nil fields are left unchanged.
type DocumentUpdate struct {
	Title               *string  `json:"title,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Visibility          *string  `json:"visibility,omitempty" validate:"omitempty,oneof=private shared"`
	Category            *int64   `json:"category,omitempty"`
	CustomTags          []string `json:"custom_tags,omitempty"`
	AutoDeleteAfterTrip *bool    `json:"auto_delete_after_trip,omitempty"`
	DeleteDaysAfterTrip *int     `json:"delete_days_after_trip,omitempty"`
}

// DocumentFilter narrows List.
type DocumentFilter struct {
	Visibility string
	CategoryID int64
	Search     string
	FileType   string
}

// DocumentsAPI wraps /api/trip/{id}/documents/ and /api/document-categories/.
type DocumentsAPI struct{ c *Client }

// Documents returns the documents resource wrapper.
func (c *Client) Documents() *DocumentsAPI { return &DocumentsAPI{c: c} }

func documentsPath(tripID domain.TripID) string {
	return fmt.Sprintf("/api/trip/%d/documents/", tripID)
}

func documentPath(tripID domain.TripID, documentID int64) string {
	return fmt.Sprintf("%s%d/", documentsPath(tripID), documentID)
}

// Categories returns the document categories.
func (a *DocumentsAPI) Categories(ctx context.Context) ([]DocumentCategory, error) {
	var out []DocumentCategory
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/document-categories/"}, &out)
	return out, err
}

// List returns the trip's documents matching f.
func (a *DocumentsAPI) List(ctx context.Context, tripID domain.TripID, f DocumentFilter) ([]Document, error) {
	q := url.Values{}
	if f.Visibility != "" {
		q.Set("visibility", f.Visibility)
	}
	if f.CategoryID != 0 {
		q.Set("category", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.FileType != "" {
		q.Set("file_type", f.FileType)
	}
	var out []Document
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: documentsPath(tripID), Query: q}, &out)
	return out, err
}

// Get returns one document with its comments.
func (a *DocumentsAPI) Get(ctx context.Context, tripID domain.TripID, documentID int64) (Document, error) {
	var out Document
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: documentPath(tripID, documentID)}, &out)
	return out, err
}

// Upload creates a document as a multipart upload.
func (a *DocumentsAPI) Upload(ctx context.Context, tripID domain.TripID, up DocumentUpload) (Document, error) {
	if err := validateInput(up); err != nil {
		return Document{}, err
	}

	form := &MultipartBody{}
	form.Add("title", up.Title)
	if up.Description != "" {
		form.Add("description", up.Description)
	}
	form.Add("visibility", up.Visibility)
	if up.CategoryID != 0 {
		form.Add("category", strconv.FormatInt(up.CategoryID, 10))
	}
	for _, tag := range up.CustomTags {
		form.Add("custom_tags", tag)
	}
	if up.AutoDeleteAfterTrip != nil {
		form.Add("auto_delete_after_trip", strconv.FormatBool(*up.AutoDeleteAfterTrip))
	}
	if up.DeleteDaysAfterTrip != 0 {
		form.Add("delete_days_after_trip", strconv.Itoa(up.DeleteDaysAfterTrip))
	}
	form.Files = append(form.Files, FormFile{Field: "file", Filename: up.Filename, Content: up.Content})

	var out Document
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: documentsPath(tripID), Multipart: form}, &out)
	return out, err
}

// Update changes document metadata.
func (a *DocumentsAPI) Update(ctx context.Context, tripID domain.TripID, documentID int64, up DocumentUpdate) (Document, error) {
	if err := validateInput(up); err != nil {
		return Document{}, err
	}
	var out Document
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: documentPath(tripID, documentID), Body: up}, &out)
	return out, err
}

// Delete removes a document.
func (a *DocumentsAPI) Delete(ctx context.Context, tripID domain.TripID, documentID int64) error {
	return a.c.Do(ctx, Request{Method: http.MethodDelete, Path: documentPath(tripID, documentID)}, nil)
}

// Comments returns a document's comments.
func (a *DocumentsAPI) Comments(ctx context.Context, tripID domain.TripID, documentID int64) ([]DocumentComment, error) {
	var out []DocumentComment
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: documentPath(tripID, documentID) + "comments/"}, &out)
	return out, err
}

// AddComment posts a comment.
func (a *DocumentsAPI) AddComment(ctx context.Context, tripID domain.TripID, documentID int64, content string) (DocumentComment, error) {
	if content == "" {
		return DocumentComment{}, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	var out DocumentComment
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   documentPath(tripID, documentID) + "comments/",
		Body:   map[string]string{"content": content},
	}, &out)
	return out, err
}

// UpdateComment edits a comment.
func (a *DocumentsAPI) UpdateComment(ctx context.Context, tripID domain.TripID, documentID, commentID int64, content string) (DocumentComment, error) {
	if content == "" {
		return DocumentComment{}, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	var out DocumentComment
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("%scomments/%d/", documentPath(tripID, documentID), commentID),
		Body:   map[string]string{"content": content},
	}, &out)
	return out, err
}

// DeleteComment removes a comment.
func (a *DocumentsAPI) DeleteComment(ctx context.Context, tripID domain.TripID, documentID, commentID int64) error {
	return a.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%scomments/%d/", documentPath(tripID, documentID), commentID),
	}, nil)
}
