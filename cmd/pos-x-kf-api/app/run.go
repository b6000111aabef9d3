package app

import (
	"github.com/gin-gonic/gin"

	"github.com/realsagiza/POS-X-KF-API/configs"
	apihttp "github.com/realsagiza/POS-X-KF-API/internal/adapter/http"
	"github.com/realsagiza/POS-X-KF-API/internal/adapter/upstream"
	"github.com/realsagiza/POS-X-KF-API/internal/logging"
	"github.com/realsagiza/POS-X-KF-API/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	log := logging.New("app")

	gw := upstream.New(cfg.Upstream.BaseURL, cfg.UpstreamTimeout)
	slot := usecase.NewOrderSlot()

	createUC := usecase.NewCreateOrder(slot, gw)
	statusUC := usecase.NewOrderStatus(slot, gw)
	cancelUC := usecase.NewCancelOrder(slot, gw)
	balancesUC := usecase.NewGetBalances(gw)

	h := apihttp.NewSaleHandler(createUC, statusUC, cancelUC, balancesUC,
		cfg.App.Name, cfg.App.Port)
	router := apihttp.NewRouter(h, cfg.API.ResponseDelay)

	log.Info("starting up",
		"upstream_base", cfg.Upstream.BaseURL,
		"upstream_timeout", cfg.UpstreamTimeout.String(),
		"addr", cfg.ListenAddr(),
	)

	return &App{Router: router}, nil
}
