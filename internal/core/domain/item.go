package domain

type Item struct {
	ID       int64  `json:"item_id"`
	Name     string `json:"item_name"`
	Quantity int    `json:"quantity"`
}
