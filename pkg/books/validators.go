package books

type ListBooksQuery struct {
	Limit    int  `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset   int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	SeriesID *int `query:"series_id" json:"series_id,omitempty" validate:"omitempty,min=1"`
}
