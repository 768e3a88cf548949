package collections

type CreateCollectionPayload struct {
	Name string `json:"name" validate:"required,max=200"`
}

type AddSeriesPayload struct {
	SeriesID int `json:"series_id" validate:"required,min=1"`
}
