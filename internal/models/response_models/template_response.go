package response_models

type TemplateItem struct {
	ID        string  `json:"id"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `json:"price"`
	ImageOnly bool    `json:"imageOnly"`
}
