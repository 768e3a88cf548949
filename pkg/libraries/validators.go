package libraries

type ListLibrariesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateLibraryPayload struct {
	Name        string `json:"name" validate:"required,max=200"`
	SeriesCover string `json:"series_cover,omitempty" validate:"omitempty,oneof=first first_unread_or_first first_unread_or_last last"`
}

type UpdateLibraryPayload struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	SeriesCover *string `json:"series_cover,omitempty" validate:"omitempty,oneof=first first_unread_or_first first_unread_or_last last"`
}
