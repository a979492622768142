package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"app/internal/domain/model"

	"go.uber.org/zap"
)

// 注文ペイロードを受け取り、成否だけを返す外部Notifier。
type OrderNotifier interface {
	Notify(ctx context.Context, o model.Order) error
}

type CheckoutStep string

const (
	StepIdle                 CheckoutStep = "idle"
	StepAwaitingName         CheckoutStep = "awaiting_name"
	StepAwaitingContact      CheckoutStep = "awaiting_contact"
	StepAwaitingConfirmation CheckoutStep = "awaiting_confirmation"
)

// 進行中のダイアログ状態。リロードをまたいで保持しない。
type CheckoutSession struct {
	Step    CheckoutStep
	Name    string
	Contact string
}

type CheckoutEventType string

const (
	EventStart   CheckoutEventType = "start"
	EventAnswer  CheckoutEventType = "answer"
	EventConfirm CheckoutEventType = "confirm"
	EventCancel  CheckoutEventType = "cancel"
)

type CheckoutEvent struct {
	Type  CheckoutEventType
	Value string
}

type CheckoutResponse struct {
	Step    CheckoutStep `json:"step"`
	Prompt  string       `json:"prompt,omitempty"`  // 次に表示する質問
	Message string       `json:"message,omitempty"` // 同じステップを再表示する時のバリデーション文言
	Summary string       `json:"summary,omitempty"` // 確認ステップの内容
	Notice  string       `json:"notice,omitempty"`  // 送信完了/失敗の通知
	Failed  bool         `json:"failed,omitempty"`  // Noticeが失敗通知かどうか
	Hidden  bool         `json:"hidden,omitempty"`  // ダイアログを閉じたか
}

// CheckoutUsecase は name → contact → confirm のプロンプト列を進める状態機械です。
// 入力は HandleInput ただ1つから受け、描画側は返ってきた状態を映すだけ。
type CheckoutUsecase struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession

	carts    *CartUsecase
	notifier OrderNotifier
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutUsecase(
	carts *CartUsecase,
	notifier OrderNotifier,
	timeout time.Duration,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		sessions: map[string]*CheckoutSession{},
		carts:    carts,
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// HandleInput はチェックアウトの唯一の入り口。
// ロックが守るのはセッション状態の読み書きだけで、Notifierの呼び出し中は持たない。
func (u *CheckoutUsecase) HandleInput(ctx context.Context, sessionID string, ev CheckoutEvent) (CheckoutResponse, error) {
	if sessionID == "" {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	u.mu.Lock()

	//エントリを置くのは状態が前へ進む時だけ（弾いたイベントでmapを育てない）
	sess := u.sessions[sessionID]
	if sess == nil {
		sess = &CheckoutSession{Step: StepIdle}
	}

	switch ev.Type {
	case EventStart:
		u.sessions[sessionID] = sess
		res := u.start(sess)
		u.mu.Unlock()
		return res, nil

	case EventAnswer:
		res, err := u.answer(ctx, sessionID, sess, ev.Value)
		u.mu.Unlock()
		return res, err

	case EventConfirm:
		if sess.Step != StepAwaitingConfirmation {
			u.mu.Unlock()
			return CheckoutResponse{}, NewHTTPError(http.StatusConflict, "invalid step")
		}

		//回答を取り出してロックを手放してから送信する。
		//1セッションの送信待ちで他セッションのイベントを塞がない
		name, contact := sess.Name, sess.Contact
		delete(u.sessions, sessionID)
		u.mu.Unlock()

		return u.submit(ctx, sessionID, name, contact), nil

	case EventCancel:
		res := u.cancel(sessionID, sess)
		u.mu.Unlock()
		return res, nil

	default:
		u.mu.Unlock()
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid event")
	}
}

// 開始。カートが空でないことは呼び出し側の責任で、ここでは再チェックしない。
// 途中キャンセル後でも常に名前の質問からやり直す（入力済みの値は残っている）。
func (u *CheckoutUsecase) start(sess *CheckoutSession) CheckoutResponse {
	sess.Step = StepAwaitingName
	return CheckoutResponse{
		Step:   StepAwaitingName,
		Prompt: "Enter your name for the order",
	}
}

func (u *CheckoutUsecase) answer(ctx context.Context, sessionID string, sess *CheckoutSession, value string) (CheckoutResponse, error) {
	v := strings.TrimSpace(value)

	switch sess.Step {
	case StepAwaitingName:
		if v == "" {
			//同じステップを再表示
			return CheckoutResponse{
				Step:    StepAwaitingName,
				Prompt:  "Enter your name for the order",
				Message: "name is required",
			}, nil
		}

		sess.Name = v
		sess.Step = StepAwaitingContact
		return CheckoutResponse{
			Step:   StepAwaitingContact,
			Prompt: "Enter your WhatsApp or email for follow-up",
		}, nil

	case StepAwaitingContact:
		if v == "" {
			return CheckoutResponse{
				Step:    StepAwaitingContact,
				Prompt:  "Enter your WhatsApp or email for follow-up",
				Message: "contact is required",
			}, nil
		}

		sess.Contact = v
		sess.Step = StepAwaitingConfirmation

		total := cartTotal(u.carts.Lines(ctx, sessionID)).StringFixed(2)
		return CheckoutResponse{
			Step:    StepAwaitingConfirmation,
			Summary: fmt.Sprintf("Name: %s\nContact: %s\nTotal: $%s", sess.Name, sess.Contact, total),
		}, nil

	default:
		return CheckoutResponse{}, NewHTTPError(http.StatusConflict, "invalid step")
	}
}

// 送信。カートの現在値から注文を組み立ててNotifierを一度だけ呼ぶ。
// 成功ならカートを空に、失敗ならカートは残す。セッションは呼び出し前に
// 解放済みで、成否に関わらずやり直しはIdleからのフレッシュスタート。
func (u *CheckoutUsecase) submit(ctx context.Context, sessionID string, name string, contact string) CheckoutResponse {
	order := buildOrder(name, contact, u.carts.Lines(ctx, sessionID))

	//送信が宙吊りにならないよう上限を切る
	sendCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.notifier.Notify(sendCtx, order); err != nil {
		u.logger.Warn("order submission failed", zap.Error(err))
		return CheckoutResponse{
			Step:   StepIdle,
			Notice: "failed to send order",
			Failed: true,
		}
	}

	if _, err := u.carts.Clear(ctx, sessionID); err != nil {
		u.logger.Warn("cart clear after order failed", zap.Error(err))
	}

	return CheckoutResponse{
		Step:   StepIdle,
		Notice: "order sent",
	}
}

// キャンセル。
// name/contact入力中はダイアログを閉じるだけで、ステップと入力済みの値は残す
// （再開は開始のやり直しで行う）。確認ステップとIdleでは全部リセットし、
// セッションの保持もやめる。
func (u *CheckoutUsecase) cancel(sessionID string, sess *CheckoutSession) CheckoutResponse {
	switch sess.Step {
	case StepAwaitingName, StepAwaitingContact:
		return CheckoutResponse{
			Step:   sess.Step,
			Hidden: true,
		}
	default:
		delete(u.sessions, sessionID)
		return CheckoutResponse{
			Step:   StepIdle,
			Hidden: true,
		}
	}
}

func buildOrder(name string, contact string, lines []model.CartLine) model.Order {
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		items = append(items, fmt.Sprintf("%s x%d", l.Name, l.Quantity))
	}

	return model.Order{
		Name:    name,
		Contact: contact,
		Items:   strings.Join(items, "\n"),
		Total:   cartTotal(lines).StringFixed(2),
	}
}
