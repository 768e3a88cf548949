package series

type ListSeriesQuery struct {
	Limit     int  `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset    int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	LibraryID *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
}

type CreateSeriesPayload struct {
	Name      string `json:"name" validate:"required,max=200"`
	LibraryID int    `json:"library_id" validate:"required,min=1"`
}

type AddBooksPayload struct {
	Books []BookInput `json:"books" validate:"required,min=1,dive"`
}

// BookInput is a candidate book to attach to a series.
type BookInput struct {
	Name      string `json:"name" validate:"required,max=300"`
	LibraryID int    `json:"library_id" validate:"required,min=1"`
}

type DeleteSeriesQuery struct {
	// Permanent removes the series and every dependent row instead of
	// stamping a deletion timestamp.
	Permanent bool `query:"permanent" json:"permanent,omitempty"`
}

type CoverQuery struct {
	Size *int `query:"size" json:"size,omitempty" validate:"omitempty,min=16,max=1024"`
}
