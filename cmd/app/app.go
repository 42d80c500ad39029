package main

import (
	"fmt"
	"os"

	"github.com/brasil-hosp/go-backend/internal/app"
	config "github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

//	@title						Brasil Hosp Catalog API
//	@version					1.0
//	@description				Каталог товаров, корзина запроса цены и администрирование.
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	os.Exit(run())
}

func run() int {
	log, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return 1
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return 1
	}

	if err := application.Run(); err != nil {
		return 1
	}

	return 0
}
