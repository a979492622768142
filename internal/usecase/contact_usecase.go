package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 問い合わせフォームの転送先。
type ContactForwarder interface {
	Forward(ctx context.Context, name string, email string, message string) error
}

// ContactUsecase は /contact の転送だけを行う。
type ContactUsecase struct {
	forwarder ContactForwarder
	timeout   time.Duration
	logger    *zap.Logger
}

func NewContactUsecase(forwarder ContactForwarder, timeout time.Duration, logger *zap.Logger) *ContactUsecase {
	return &ContactUsecase{
		forwarder: forwarder,
		timeout:   timeout,
		logger:    logger,
	}
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func (u *ContactUsecase) Send(ctx context.Context, in ContactInput) error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)

	if name == "" || email == "" || message == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	sendCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.forwarder.Forward(sendCtx, name, email, message); err != nil {
		u.logger.Warn("contact forward failed", zap.Error(err))
		return NewHTTPError(http.StatusBadGateway, "failed to send message")
	}

	return nil
}
