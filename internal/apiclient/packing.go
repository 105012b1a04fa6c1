package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// PackingList is a named checklist on a trip, private or shared.
type PackingList struct {
	ID                   int64              `json:"id"`
	Trip                 domain.TripID      `json:"trip"`
	Name                 string             `json:"name"`
	Description          string             `json:"description,omitempty"`
	ListType             string             `json:"list_type"`
	CreatedBy            domain.Participant `json:"created_by"`
	TotalItems           int                `json:"total_items"`
	PackedItems          int                `json:"packed_items"`
	CompletionPercentage float64            `json:"completion_percentage"`
	CreatedAt            *time.Time         `json:"created_at,omitempty"`
	UpdatedAt            *time.Time         `json:"updated_at,omitempty"`
}

// PackingListInput creates a packing list.
type PackingListInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	ListType    string `json:"list_type" validate:"oneof=private shared"`
}

// PackingItem is one entry on a packing list.
type PackingItem struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Priority    string              `json:"priority"`
	Quantity    int                 `json:"quantity"`
	IsPacked    bool                `json:"is_packed"`
	AssignedTo  *domain.Participant `json:"assigned_to,omitempty"`
	CreatedBy   domain.Participant  `json:"created_by"`
	PackedBy    *domain.Participant `json:"packed_by,omitempty"`
	PackedAt    *time.Time          `json:"packed_at,omitempty"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`
}

// PackingItemInput creates an item. Zero Priority and Quantity let the
// backend apply its defaults.
type PackingItemInput struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	Priority     string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Quantity     int    `json:"quantity,omitempty" validate:"gte=0"`
	AssignedToID *int64 `json:"assigned_to_id,omitempty"`
}

// PackingItemFilter narrows ListItems. Nil IsPacked means "either".
type PackingItemFilter struct {
	Category string
	IsPacked *bool
	Search   string
}

// PackingAPI wraps /api/trip/{id}/packing-lists/.
type PackingAPI struct{ c *Client }

// Packing returns the packing resource wrapper.
func (c *Client) Packing() *PackingAPI { return &PackingAPI{c: c} }

func packingPath(tripID domain.TripID) string {
	return fmt.Sprintf("/api/trip/%d/packing-lists/", tripID)
}

func packingItemsPath(tripID domain.TripID, listID int64) string {
	return fmt.Sprintf("%s%d/items/", packingPath(tripID), listID)
}

// ListLists returns the trip's packing lists, optionally only one list type.
func (a *PackingAPI) ListLists(ctx context.Context, tripID domain.TripID, listType string) ([]PackingList, error) {
	q := url.Values{}
	if listType != "" {
		q.Set("list_type", listType)
	}
	var out []PackingList
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: packingPath(tripID), Query: q}, &out)
	return out, err
}

// CreateList creates a packing list.
func (a *PackingAPI) CreateList(ctx context.Context, tripID domain.TripID, in PackingListInput) (PackingList, error) {
	if err := validateInput(in); err != nil {
		return PackingList{}, err
	}
	var out PackingList
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: packingPath(tripID), Body: in}, &out)
	return out, err
}

// ListItems returns the items on a list.
func (a *PackingAPI) ListItems(ctx context.Context, tripID domain.TripID, listID int64, f PackingItemFilter) ([]PackingItem, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.IsPacked != nil {
		q.Set("is_packed", strconv.FormatBool(*f.IsPacked))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var out []PackingItem
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: packingItemsPath(tripID, listID), Query: q}, &out)
	return out, err
}

// CreateItem adds an item to a list.
func (a *PackingAPI) CreateItem(ctx context.Context, tripID domain.TripID, listID int64, in PackingItemInput) (PackingItem, error) {
	if err := validateInput(in); err != nil {
		return PackingItem{}, err
	}
	var out PackingItem
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: packingItemsPath(tripID, listID), Body: in}, &out)
	return out, err
}

// UpdateItem patches an item with the given fields.
func (a *PackingAPI) UpdateItem(ctx context.Context, tripID domain.TripID, listID, itemID int64, fields map[string]any) (PackingItem, error) {
	var out PackingItem
	err := a.c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("%s%d/", packingItemsPath(tripID, listID), itemID),
		Body:   fields,
	}, &out)
	return out, err
}

// DeleteItem removes an item.
func (a *PackingAPI) DeleteItem(ctx context.Context, tripID domain.TripID, listID, itemID int64) error {
	return a.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s%d/", packingItemsPath(tripID, listID), itemID),
	}, nil)
}

// TogglePacked flips an item's packed flag.
func (a *PackingAPI) TogglePacked(ctx context.Context, tripID domain.TripID, listID, itemID int64) (PackingItem, error) {
	var out PackingItem
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("%s%d/toggle/", packingItemsPath(tripID, listID), itemID),
	}, &out)
	return out, err
}
