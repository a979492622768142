package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）
	PostgresSSLMode  string // sslmode（default disable）

	AdminSecret string // 管理画面の共有シークレット

	CheckoutWebhookURL string // 注文転送先Webhook
	ContactWebhookURL  string // 問い合わせ転送先Webhook（未指定ならCheckoutと同じ）
	SendgridAPIKey     string // 指定があればWebhookの代わりにメール送信
	OrderMailFrom      string // 注文メールのFrom
	OrderMailTo        string // 注文メールのTo

	SubmitTimeoutSec int // 注文送信のタイムアウト秒（default 10）

	GoEnv string // dev/prod
	FEURL string // フロントURL（cookieやCORSなどで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  os.Getenv("POSTGRES_SSLMODE"),

		AdminSecret: os.Getenv("ADMIN_SECRET"),

		CheckoutWebhookURL: os.Getenv("CHECKOUT_WEBHOOK_URL"),
		ContactWebhookURL:  os.Getenv("CONTACT_WEBHOOK_URL"),
		SendgridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		OrderMailFrom:      os.Getenv("ORDER_MAIL_FROM"),
		OrderMailTo:        os.Getenv("ORDER_MAIL_TO"),

		SubmitTimeoutSec: 10,

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	if v := os.Getenv("SUBMIT_TIMEOUT_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec < 1 {
			return Config{}, fmt.Errorf("SUBMIT_TIMEOUT_SEC must be positive number")
		}
		cfg.SubmitTimeoutSec = sec
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.PostgresSSLMode == "" {
		cfg.PostgresSSLMode = "disable"
	}
	if cfg.AdminSecret == "" {
		return Config{}, fmt.Errorf("ADMIN_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	//Notifierはどちらか一方が必要
	if cfg.SendgridAPIKey == "" && cfg.CheckoutWebhookURL == "" {
		return Config{}, fmt.Errorf("SENDGRID_API_KEY or CHECKOUT_WEBHOOK_URL is required")
	}
	if cfg.SendgridAPIKey != "" {
		if cfg.OrderMailFrom == "" {
			return Config{}, fmt.Errorf("ORDER_MAIL_FROM is required")
		}
		if cfg.OrderMailTo == "" {
			return Config{}, fmt.Errorf("ORDER_MAIL_TO is required")
		}
	}
	if cfg.ContactWebhookURL == "" {
		cfg.ContactWebhookURL = cfg.CheckoutWebhookURL
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
