package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const msgUnstorableText = "must be valid UTF-8 without NUL characters"

// storableText rejects what a Postgres text column refuses (SQLSTATE 22021).
var storableText = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if !utf8.ValidString(s) || strings.ContainsRune(s, 0) {
		return errors.New(msgUnstorableText)
	}
	return nil
})

// ========================================
// API DTOs
// ========================================

// CreateOpinionRequest - POST /api/opinions
// Pointer fields distinguish "absent" from "empty".
type CreateOpinionRequest struct {
	Title   *string `json:"title"`
	Text    *string `json:"text"`
	Source  *string `json:"source"`
	AddedBy *string `json:"added_by"`
}

// HasRequiredFields reports whether both title and text keys were sent.
func (r *CreateOpinionRequest) HasRequiredFields() bool {
	return r.Title != nil && r.Text != nil
}

func (r *CreateOpinionRequest) Normalize() {
	r.Title = trimPtr(r.Title)
	r.Text = trimPtr(r.Text)
	r.Source = blankToNil(trimPtr(r.Source))
	r.AddedBy = blankToNil(trimPtr(r.AddedBy))
}

func (r CreateOpinionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLength).Error("title must be 1-128 characters"),
			storableText,
		),
		validation.Field(&r.Text,
			validation.Required.Error("text is required"),
			storableText,
		),
		validation.Field(&r.Source,
			validation.RuneLength(0, MaxSourceLength).Error("source must be at most 256 characters"),
			storableText,
		),
		validation.Field(&r.AddedBy,
			validation.RuneLength(0, MaxAddedByLength).Error("added_by must be at most 64 characters"),
			storableText,
		),
	)
}

// ToEntity converts CreateOpinionRequest to Opinion entity
func (r *CreateOpinionRequest) ToEntity() *Opinion {
	o := &Opinion{
		Source:  r.Source,
		AddedBy: r.AddedBy,
	}
	if r.Title != nil {
		o.Title = *r.Title
	}
	if r.Text != nil {
		o.Text = *r.Text
	}
	return o
}

// UpdateOpinionRequest - PATCH /api/opinions/:id
// All fields optional for partial updates
type UpdateOpinionRequest struct {
	Title   *string `json:"title"`
	Text    *string `json:"text"`
	Source  *string `json:"source"`
	AddedBy *string `json:"added_by"`
}

func (r *UpdateOpinionRequest) Normalize() {
	r.Title = trimPtr(r.Title)
	r.Text = trimPtr(r.Text)
	r.Source = trimPtr(r.Source)
	r.AddedBy = trimPtr(r.AddedBy)
}

func (r UpdateOpinionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			validation.RuneLength(1, MaxTitleLength).Error("title must be 1-128 characters"),
			storableText,
		),
		validation.Field(&r.Text,
			validation.NilOrNotEmpty.Error("text cannot be empty"),
			storableText,
		),
		validation.Field(&r.Source,
			validation.RuneLength(0, MaxSourceLength).Error("source must be at most 256 characters"),
			storableText,
		),
		validation.Field(&r.AddedBy,
			validation.RuneLength(0, MaxAddedByLength).Error("added_by must be at most 64 characters"),
			storableText,
		),
	)
}

// ToPatch converts the request into a repository patch.
// An empty source or added_by clears the stored value.
func (r *UpdateOpinionRequest) ToPatch() OpinionPatch {
	return OpinionPatch{
		Title:   r.Title,
		Text:    r.Text,
		Source:  r.Source,
		AddedBy: r.AddedBy,
	}
}

// OpinionResponse - JSON representation of an opinion
type OpinionResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Source    *string   `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	AddedBy   *string   `json:"added_by"`
}

// OpinionEnvelope - {"opinion": {...}}
type OpinionEnvelope struct {
	Opinion *OpinionResponse `json:"opinion"`
}

// OpinionListEnvelope - {"opinions": [...]}
type OpinionListEnvelope struct {
	Opinions []OpinionResponse `json:"opinions"`
}

// ToResponse converts Opinion entity to OpinionResponse DTO
func (o *Opinion) ToResponse() *OpinionResponse {
	resp := &OpinionResponse{
		ID:        o.ID,
		Title:     o.Title,
		Text:      o.Text,
		Timestamp: o.Timestamp.UTC(),
	}
	// Empty optionals are rendered as null
	resp.Source = blankToNil(o.Source)
	resp.AddedBy = blankToNil(o.AddedBy)
	return resp
}

// ToListEnvelope converts a slice; never nil so JSON shows [].
func ToListEnvelope(opinions []Opinion) OpinionListEnvelope {
	list := make([]OpinionResponse, 0, len(opinions))
	for i := range opinions {
		list = append(list, *opinions[i].ToResponse())
	}
	return OpinionListEnvelope{Opinions: list}
}

// ========================================
// WEB FORM
// ========================================

// OpinionForm - POST /add
type OpinionForm struct {
	Title     string `form:"title" json:"title"`
	Text      string `form:"text" json:"text"`
	Source    string `form:"source" json:"source"`
	CSRFToken string `form:"csrf_token" json:"-"`
}

func (f *OpinionForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Text = strings.TrimSpace(f.Text)
	f.Source = strings.TrimSpace(f.Source)
}

func (f OpinionForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error("This field is required"),
			validation.RuneLength(1, MaxTitleLength).Error("Title must be between 1 and 128 characters"),
			storableText,
		),
		validation.Field(&f.Text,
			validation.Required.Error("This field is required"),
			storableText,
		),
		validation.Field(&f.Source,
			validation.RuneLength(0, MaxSourceLength).Error("Link must be at most 256 characters"),
			storableText,
		),
	)
}

// ToCreateRequest hands the form to the same service path as the API.
func (f *OpinionForm) ToCreateRequest() *CreateOpinionRequest {
	title, text := f.Title, f.Text
	req := &CreateOpinionRequest{Title: &title, Text: &text}
	if f.Source != "" {
		source := f.Source
		req.Source = &source
	}
	return req
}

// ========================================
// BULK IMPORT
// ========================================

// CSVOpinionRow represents one data row of an import file
type CSVOpinionRow struct {
	Row     int // Row number in the file, header is row 1
	Title   string
	Text    string
	Source  string
	AddedBy string
}

// ToCreateRequest maps the row field by field.
func (r *CSVOpinionRow) ToCreateRequest() *CreateOpinionRequest {
	title, text := r.Title, r.Text
	req := &CreateOpinionRequest{Title: &title, Text: &text}
	if r.Source != "" {
		source := r.Source
		req.Source = &source
	}
	if r.AddedBy != "" {
		addedBy := r.AddedBy
		req.AddedBy = &addedBy
	}
	return req
}

// ImportRowError represents một lỗi từ một row
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BulkImportResult là kết quả sau khi import
type BulkImportResult struct {
	TotalRows int              `json:"total_rows"`
	Loaded    int              `json:"loaded"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
