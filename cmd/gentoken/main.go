// cmd/gentoken/main.go: Emite un JWT de desarrollo firmado con JWT_SECRET.
// Uso: go run ./cmd/gentoken -usuario <uuid> -tienda <uuid> -rol cajero
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/config"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/middleware"

	"github.com/google/uuid"
)

func main() {
	usuario := flag.String("usuario", "", "UUID del usuario")
	tienda := flag.String("tienda", "", "UUID de la tienda (tenant)")
	rol := flag.String("rol", "cajero", "cajero | supervisor | administrador")
	ttl := flag.Duration("ttl", 8*time.Hour, "vigencia del token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no configurado")
		os.Exit(1)
	}

	usuarioID, err := uuid.Parse(*usuario)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usuario inválido:", err)
		os.Exit(2)
	}
	tenantID, err := uuid.Parse(*tienda)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tienda inválida:", err)
		os.Exit(2)
	}

	token, err := middleware.FirmarToken(cfg.JWTSecret, usuarioID, tenantID, *rol, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "firmar token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
