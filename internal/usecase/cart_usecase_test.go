package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// Mocks / Fakes
// =====================

type SnapshotRepoMock struct{ mock.Mock }

func (m *SnapshotRepoMock) Load(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *SnapshotRepoMock) Save(ctx context.Context, key string, data string) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) List(ctx context.Context, category string) ([]model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Delete(ctx context.Context, id string) error {
	panic("not used in CartUsecase tests")
}

// 実物のJSONで往復するインメモリのスナップショット置き場
type snapshotStoreFake struct {
	data map[string]string
}

func newSnapshotStoreFake() *snapshotStoreFake {
	return &snapshotStoreFake{data: map[string]string{}}
}

func (f *snapshotStoreFake) Load(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return v, nil
}

func (f *snapshotStoreFake) Save(ctx context.Context, key string, data string) error {
	f.data[key] = data
	return nil
}

func productMockWith(products ...model.Product) *CartProductRepoMock {
	m := new(CartProductRepoMock)
	for _, p := range products {
		m.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	}
	return m
}

func assertErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), substr)
}

// =====================
// Add / SetQuantity / Clear
// =====================

func TestCartUsecase_AddToCart_SameProductAccumulates(t *testing.T) {
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)

	out, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)

	//同一商品は1行に加算。行は増えない
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, int64(2), out.Count)
	assert.Equal(t, "20.00", out.Total)
}

func TestCartUsecase_AddToCart_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()

	p1 := model.Product{ID: "p1", Name: "Soap", Price: 10}
	p2 := model.Product{ID: "p2", Name: "Candle", Price: 5.5}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p1, p2), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)
	_, err = uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p2", Quantity: 1})
	assert.NoError(t, err)
	out, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)

	assert.Equal(t, 2, len(out.Items))
	assert.Equal(t, "p1", out.Items[0].ProductID)
	assert.Equal(t, "p2", out.Items[1].ProductID)
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), new(CartProductRepoMock), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 0})
	assertErrContains(t, err, "invalid quantity")

	_, err = uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: -3})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	ctx := context.Background()

	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), pRepo, zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "nope", Quantity: 1})
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_SetQuantity_ZeroOrNegativeRemovesLine(t *testing.T) {
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	assert.NoError(t, err)

	out, err := uc.SetQuantity(ctx, "s1", "p1", usecase.SetQuantityInput{Quantity: 0})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	//負数も同じく行ごと削除（0の行は残さない）
	_, err = uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	assert.NoError(t, err)

	out, err = uc.SetQuantity(ctx, "s1", "p1", usecase.SetQuantityInput{Quantity: -5})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.Equal(t, "0.00", out.Total)
}

func TestCartUsecase_SetQuantity_UnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	assert.NoError(t, err)

	//存在しない商品への正数セットは暗黙addにしない
	out, err := uc.SetQuantity(ctx, "s1", "ghost", usecase.SetQuantityInput{Quantity: 3})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, "p1", out.Items[0].ProductID)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
}

func TestCartUsecase_Clear_EmptiesCart(t *testing.T) {
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 4})
	assert.NoError(t, err)

	out, err := uc.Clear(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.Equal(t, int64(0), out.Count)
}

// =====================
// Invariants
// =====================

func TestCartUsecase_TotalInvariantOverSequence(t *testing.T) {
	ctx := context.Background()

	p1 := model.Product{ID: "p1", Name: "Soap", Price: 10}
	p2 := model.Product{ID: "p2", Name: "Candle", Price: 3.75}
	uc := usecase.NewCartUsecase(newSnapshotStoreFake(), productMockWith(p1, p2), zap.NewNop())

	steps := []func() (usecase.CartResponse, error){
		func() (usecase.CartResponse, error) {
			return uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
		},
		func() (usecase.CartResponse, error) {
			return uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p2", Quantity: 3})
		},
		func() (usecase.CartResponse, error) {
			return uc.SetQuantity(ctx, "s1", "p2", usecase.SetQuantityInput{Quantity: 7})
		},
		func() (usecase.CartResponse, error) {
			return uc.SetQuantity(ctx, "s1", "p1", usecase.SetQuantityInput{Quantity: 0})
		},
		func() (usecase.CartResponse, error) {
			return uc.Clear(ctx, "s1")
		},
	}

	for i, step := range steps {
		out, err := step()
		assert.NoError(t, err)

		//中間状態すべてで total == Σ price×quantity を独立に再計算して照合
		want := decimal.Zero
		var wantCount int64 = 0
		for _, it := range out.Items {
			want = want.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(it.Quantity)))
			wantCount += it.Quantity
		}
		assert.Equal(t, want.StringFixed(2), out.Total, "step %d", i)
		assert.Equal(t, wantCount, out.Count, "step %d", i)
	}
}

// =====================
// Persistence
// =====================

func TestCartUsecase_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()

	p1 := model.Product{ID: "p1", Name: "Soap", Price: 10, Image: "soap.jpg"}
	p2 := model.Product{ID: "p2", Name: "Candle", Price: 5.5}
	store := newSnapshotStoreFake()

	uc := usecase.NewCartUsecase(store, productMockWith(p1, p2), zap.NewNop())
	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 2})
	assert.NoError(t, err)
	before, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p2", Quantity: 1})
	assert.NoError(t, err)

	//「リロード」＝同じ置き場から別インスタンスで復元
	reloaded := usecase.NewCartUsecase(store, new(CartProductRepoMock), zap.NewNop())
	after, err := reloaded.GetCart(ctx, "s1")
	assert.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestCartUsecase_CorruptSnapshotFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()

	store := newSnapshotStoreFake()
	store.data["amar-gaia-cart:s1"] = "{{{not json"

	uc := usecase.NewCartUsecase(store, new(CartProductRepoMock), zap.NewNop())

	//壊れたスナップショットはエラーにせず空カートで続行
	out, err := uc.GetCart(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.Equal(t, "0.00", out.Total)
}

func TestCartUsecase_SnapshotLoadErrorFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()

	snaps := new(SnapshotRepoMock)
	snaps.On("Load", mock.Anything, mock.Anything).Return("", errors.New("db down"))

	uc := usecase.NewCartUsecase(snaps, new(CartProductRepoMock), zap.NewNop())

	out, err := uc.GetCart(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
}

func TestCartUsecase_SnapshotSaveFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()

	snaps := new(SnapshotRepoMock)
	snaps.On("Load", mock.Anything, mock.Anything).Return("", repo.ErrNotFound)
	snaps.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	uc := usecase.NewCartUsecase(snaps, productMockWith(p), zap.NewNop())

	//書き込み失敗はベストエフォート。ミューテーション自体は成功する
	out, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Count)

	snaps.AssertExpectations(t)
}

func TestCartUsecase_MutationsWriteSnapshot(t *testing.T) {
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Soap", Price: 10}
	store := newSnapshotStoreFake()
	uc := usecase.NewCartUsecase(store, productMockWith(p), zap.NewNop())

	_, err := uc.AddToCart(ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: 1})
	assert.NoError(t, err)
	assert.Contains(t, store.data["amar-gaia-cart:s1"], "\"p1\"")

	_, err = uc.Clear(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, "[]", store.data["amar-gaia-cart:s1"])
}
