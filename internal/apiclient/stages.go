package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// StageElement is a candidate place or activity inside a stage.
type StageElement struct {
	ID              int64    `json:"id,omitempty"`
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description,omitempty"`
	URL             string   `json:"url,omitempty" validate:"omitempty,url"`
	Image           string   `json:"image,omitempty"`
	Stage           int64    `json:"stage" validate:"required"`
	AverageReaction *float64 `json:"averageReaction,omitempty"`
}

// StagesAPI wraps /api/stage/.
type StagesAPI struct{ c *Client }

// Stages returns the stages resource wrapper.
func (c *Client) Stages() *StagesAPI { return &StagesAPI{c: c} }

// Elements returns a stage's elements.
func (a *StagesAPI) Elements(ctx context.Context, stageID int64) ([]StageElement, error) {
	var out []StageElement
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/stage/%d/elements/", stageID)}, &out)
	return out, err
}

// AddElement creates an element.
func (a *StagesAPI) AddElement(ctx context.Context, el StageElement) (StageElement, error) {
	if err := validateInput(el); err != nil {
		return StageElement{}, err
	}
	var out StageElement
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/stage/element/", Body: el}, &out)
	return out, err
}

// UpdateElement changes the given fields of an element.
func (a *StagesAPI) UpdateElement(ctx context.Context, elementID int64, fields map[string]any) (StageElement, error) {
	var out StageElement
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/stage/element/%d/", elementID),
		Body:   fields,
	}, &out)
	return out, err
}

// React records a like or dislike on an element.
func (a *StagesAPI) React(ctx context.Context, elementID int64, reaction string) (StageElement, error) {
	in := struct {
		Reaction string `json:"reaction" validate:"oneof=like dislike"`
	}{Reaction: reaction}
	if err := validateInput(in); err != nil {
		return StageElement{}, err
	}
	var out StageElement
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/stage/element/%d/react/", elementID),
		Body:   in,
	}, &out)
	return out, err
}
