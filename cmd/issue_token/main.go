// Comando issue_token emite un JWT firmado con JWT_SECRET para pruebas locales.
// La emisión real de tokens vive fuera de este servicio.
//
// Uso:
//
//	go run ./cmd/issue_token -user 00000000-0000-0000-0000-000000000001 -role cajero
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/jwt"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	userID := flag.String("user", "", "ID del usuario (sub)")
	role := flag.String("role", jwt.RoleCashier, "rol: admin | cajero")
	flag.Parse()

	if *userID == "" || !jwt.ValidRole(*role) {
		log.Fatal().Str("user", *userID).Str("role", *role).Msg("usuario requerido y rol válido")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET vacío")
	}
	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("firmar token")
	}
	fmt.Println(token)
}
