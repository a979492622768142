package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// スナップショットのキー名前空間。セッションIDを連結して1セッション1スロット。
const cartKeyPrefix = "amar-gaia-cart:"

// CartUsecase は /cart の業務ロジックです。
// 状態は毎回スナップショットから復元し、ミューテーションのたびに全体を書き戻す。
type CartUsecase struct {
	snapshots repo.CartSnapshotRepository
	products  repo.ProductRepository
	logger    *zap.Logger
}

func NewCartUsecase(
	snapshots repo.CartSnapshotRepository,
	products repo.ProductRepository,
	logger *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		snapshots: snapshots,
		products:  products,
		logger:    logger,
	}
}

type CartLineResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int64   `json:"quantity"`
}

// totalは都度再計算した小数2桁固定の文字列。キャッシュしない。
type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total string             `json:"total"`
	Count int64              `json:"count"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type SetQuantityInput struct {
	Quantity int64
}

// GetCart はカート取得（スナップショットが無ければ空）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	lines := u.load(ctx, sessionID)
	return buildCartResponse(lines), nil
}

// AddToCart はカートに追加（同一商品は数量加算、無ければ行を新規作成）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines := u.load(ctx, sessionID)

	found := false
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity += in.Quantity
			found = true
			break
		}
	}
	if !found {
		//表示順は挿入順なので末尾に追加
		lines = append(lines, model.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  in.Quantity,
		})
	}

	u.persist(ctx, sessionID, lines)
	return buildCartResponse(lines), nil
}

// SetQuantity は数量変更。
// 0以下は行ごと削除。存在しない商品IDに正の数量を渡した場合は何もしない
// （暗黙のaddはしない。新規行はAddToCartだけが作る）。
func (u *CartUsecase) SetQuantity(ctx context.Context, sessionID string, productID string, in SetQuantityInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	lines := u.load(ctx, sessionID)

	if in.Quantity <= 0 {
		kept := lines[:0]
		for _, l := range lines {
			if l.ProductID != productID {
				kept = append(kept, l)
			}
		}
		lines = kept
	} else {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = in.Quantity
				break
			}
		}
	}

	u.persist(ctx, sessionID, lines)
	return buildCartResponse(lines), nil
}

// Clear はカートを無条件に空にする。
func (u *CartUsecase) Clear(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	lines := []model.CartLine{}
	u.persist(ctx, sessionID, lines)
	return buildCartResponse(lines), nil
}

// Lines は現在の明細のコピーを返す（Checkoutが注文の元にする）。
func (u *CartUsecase) Lines(ctx context.Context, sessionID string) []model.CartLine {
	lines := u.load(ctx, sessionID)
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}

// スナップショットから復元。読めない・壊れている場合は空カートで続行する。
func (u *CartUsecase) load(ctx context.Context, sessionID string) []model.CartLine {
	data, err := u.snapshots.Load(ctx, cartKeyPrefix+sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return []model.CartLine{}
	}
	if err != nil {
		u.logger.Warn("cart snapshot load failed", zap.Error(err))
		return []model.CartLine{}
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		u.logger.Warn("cart snapshot corrupt", zap.Error(err))
		return []model.CartLine{}
	}
	return lines
}

// スナップショットを書き戻す。書けなくてもリクエストは失敗させない。
func (u *CartUsecase) persist(ctx context.Context, sessionID string, lines []model.CartLine) {
	data, err := json.Marshal(lines)
	if err != nil {
		u.logger.Warn("cart snapshot marshal failed", zap.Error(err))
		return
	}

	if err := u.snapshots.Save(ctx, cartKeyPrefix+sessionID, string(data)); err != nil {
		u.logger.Warn("cart snapshot save failed", zap.Error(err))
	}
}

func buildCartResponse(lines []model.CartLine) CartResponse {
	items := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}

	return CartResponse{
		Items: items,
		Total: cartTotal(lines).StringFixed(2),
		Count: cartCount(lines),
	}
}

// total = Σ price × quantity
func cartTotal(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

// count = Σ quantity
func cartCount(lines []model.CartLine) int64 {
	var count int64 = 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}
