package main

import (
	"log"

	"github.com/realsagiza/POS-X-KF-API/cmd/pos-x-kf-api/app"
	"github.com/realsagiza/POS-X-KF-API/configs"
)

func main() {
	cfg, err := configs.Load("configs")
	if err != nil {
		log.Fatal(err)
	}

	a, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("%s listening on %s", cfg.App.Name, cfg.ListenAddr())
	if err := a.Router.Run(cfg.ListenAddr()); err != nil {
		log.Fatal(err)
	}
}
