package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const adminSecretHeader = "X-Admin-Secret"

// 管理ルート用の共有シークレット検証ミドルウェア。
// 生のシークレットは持たず、起動時に作ったbcryptハッシュと突き合わせる。
func AdminSecret(secretHash []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//ヘッダを取得
			secret := strings.TrimSpace(c.Request().Header.Get(adminSecretHeader))
			if secret == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if err := bcrypt.CompareHashAndPassword(secretHash, []byte(secret)); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
