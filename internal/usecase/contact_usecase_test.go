package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type ForwarderMock struct{ mock.Mock }

func (m *ForwarderMock) Forward(ctx context.Context, name string, email string, message string) error {
	args := m.Called(ctx, name, email, message)
	return args.Error(0)
}

func TestContactUsecase_Send_InvalidInput(t *testing.T) {
	uc := usecase.NewContactUsecase(new(ForwarderMock), time.Second, zap.NewNop())

	err := uc.Send(context.Background(), usecase.ContactInput{Name: "", Email: "a@x.com", Message: "hi"})
	assertErrContains(t, err, "invalid input")

	err = uc.Send(context.Background(), usecase.ContactInput{Name: "Ana", Email: "a@x.com", Message: "   "})
	assertErrContains(t, err, "invalid input")
}

func TestContactUsecase_Send_ForwardFailure(t *testing.T) {
	fm := new(ForwarderMock)
	fm.On("Forward", mock.Anything, "Ana", "a@x.com", "hi").Return(errors.New("down"))

	uc := usecase.NewContactUsecase(fm, time.Second, zap.NewNop())

	err := uc.Send(context.Background(), usecase.ContactInput{Name: "Ana", Email: "a@x.com", Message: "hi"})
	assertErrContains(t, err, "failed to send message")
}

func TestContactUsecase_Send_Success(t *testing.T) {
	fm := new(ForwarderMock)
	fm.On("Forward", mock.Anything, "Ana", "a@x.com", "hola").Return(nil)

	uc := usecase.NewContactUsecase(fm, time.Second, zap.NewNop())

	err := uc.Send(context.Background(), usecase.ContactInput{Name: " Ana ", Email: " a@x.com ", Message: " hola "})
	assert.NoError(t, err)

	fm.AssertExpectations(t)
}
