package model

import "time"

// カートの明細。
// productIDごとに最大1行。数量0以下の行は持たない（削除する）。
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int64   `json:"quantity"`
}

// セッションごとのスナップショット行。
// dataはCartLine配列のJSONで、ミューテーションのたびに上書きする。
type CartSnapshot struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Data      string    `gorm:"type:text;not null" json:"data"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
