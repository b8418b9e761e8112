package domain

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Available   bool     `json:"available"`
	IsNew       bool     `json:"is_new,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}
