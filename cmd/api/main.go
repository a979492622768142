package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/notifier"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	//.envは無くてもよい（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.CartSnapshot{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	snapshotRepo := infraRepo.NewCartSnapshotGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	timeout := time.Duration(cfg.SubmitTimeoutSec) * time.Second

	//Notifier（SENDGRID_API_KEYがあればメール、無ければWebhook）
	var orderNotifier usecase.OrderNotifier
	var contactForwarder usecase.ContactForwarder
	if cfg.SendgridAPIKey != "" {
		mailer := notifier.NewSendgridMailer(cfg.SendgridAPIKey, cfg.OrderMailFrom, cfg.OrderMailTo, logger)
		orderNotifier = mailer
		contactForwarder = mailer
	} else {
		orderNotifier = notifier.NewOrderWebhook(cfg.CheckoutWebhookURL, timeout, logger)
		contactForwarder = notifier.NewContactWebhook(cfg.ContactWebhookURL, timeout, logger)
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(snapshotRepo, productRepo, logger)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, orderNotifier, timeout, logger)
	productUC := usecase.NewProductUsecase(productRepo, idGen)
	contactUC := usecase.NewContactUsecase(contactForwarder, timeout, logger)

	//Handler生成
	handlers := server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Contact:      handler.NewContactHandler(contactUC),
	}

	//管理シークレットは起動時にハッシュ化して、生の値は持ち回らない
	adminSecretHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminSecret), 12)
	if err != nil {
		logger.Fatal("admin secret hash failed", zap.Error(err))
	}

	//Server起動
	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(addr, cfg, adminSecretHash, handlers); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
