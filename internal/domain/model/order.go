package model

// 確定時に一度だけ組み立てる注文ペイロード。
// Notifierへ渡して破棄する。永続化しない。
type Order struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Items   string `json:"items"` // "name x{quantity}" を改行区切り
	Total   string `json:"total"` // 小数2桁固定
}
