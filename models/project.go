package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ProjectCollection is the document collection holding portfolio projects.
const ProjectCollection = "project"

var ErrMissingID = errors.New("project record has no id")

// Project is a portfolio project as it is stored in the document store.
type Project struct {
	Title       string   `json:"title" bson:"title"`
	Summary     string   `json:"summary" bson:"summary"`
	Description *string  `json:"description" bson:"description,omitempty"`
	Tags        []string `json:"tags" bson:"tags"`
	Year        *int     `json:"year" bson:"year,omitempty"`
	Featured    bool     `json:"featured" bson:"featured"`
	CoverImage  *string  `json:"cover_image" bson:"cover_image,omitempty"`
	DemoURL     *string  `json:"demo_url" bson:"demo_url,omitempty"`
	MediaURL    *string  `json:"media_url" bson:"media_url,omitempty"`
}

// ProjectPayload is the creation schema. Required fields are pointers so a
// missing key can be told apart from an empty value.
type ProjectPayload struct {
	Title       *string  `json:"title" validate:"required"`
	Summary     *string  `json:"summary" validate:"required"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Year        *int     `json:"year"`
	Featured    *bool    `json:"featured"`
	CoverImage  *string  `json:"cover_image"`
	DemoURL     *string  `json:"demo_url"`
	MediaURL    *string  `json:"media_url"`

	// keys sent as an explicit null where null is not accepted
	nullFields []string
}

// fields that have a default but may not be null
var nonNullableFields = []string{"tags", "featured"}

// UnmarshalJSON decodes the payload and remembers which non-nullable keys were
// sent as null, since they decode the same as an omitted key.
func (p *ProjectPayload) UnmarshalJSON(data []byte) error {
	type payload ProjectPayload
	var decoded payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ProjectPayload(decoded)
	p.nullFields = nil
	for _, key := range nonNullableFields {
		if value, ok := raw[key]; ok && string(value) == "null" {
			p.nullFields = append(p.nullFields, key)
		}
	}
	return nil
}

// Project applies defaults for omitted optional fields. Call it only on a
// payload that passed validation.
func (p ProjectPayload) Project() Project {
	project := Project{
		Description: p.Description,
		Tags:        p.Tags,
		Year:        p.Year,
		CoverImage:  p.CoverImage,
		DemoURL:     p.DemoURL,
		MediaURL:    p.MediaURL,
	}
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Summary != nil {
		project.Summary = *p.Summary
	}
	if p.Featured != nil {
		project.Featured = *p.Featured
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}
	return project
}

// ProjectRecord is a stored project together with its store-assigned id.
type ProjectRecord struct {
	ID        string
	Project   Project
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectOut is the response shape of a project.
type ProjectOut struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Year        *int     `json:"year"`
	Featured    bool     `json:"featured"`
	CoverImage  *string  `json:"cover_image"`
	DemoURL     *string  `json:"demo_url"`
	MediaURL    *string  `json:"media_url"`
}

// NewProjectOut shapes a stored record for the response. Records without an id
// are rejected.
func NewProjectOut(record ProjectRecord) (ProjectOut, error) {
	if record.ID == "" {
		return ProjectOut{}, ErrMissingID
	}
	p := record.Project
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectOut{
		ID:          record.ID,
		Title:       p.Title,
		Summary:     p.Summary,
		Description: p.Description,
		Tags:        tags,
		Year:        p.Year,
		Featured:    p.Featured,
		CoverImage:  p.CoverImage,
		DemoURL:     p.DemoURL,
		MediaURL:    p.MediaURL,
	}, nil
}
