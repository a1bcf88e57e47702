package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/config"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/db"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/seed"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/cart"
)

func main() {
	var clientID string
	flag.StringVar(&clientID, "client", "demo", "Client id whose cart is seeded (send it as X-Client-ID)")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	summary, err := seed.Apply(ctx, cart.New(state.NewPostgres(pool), logger), clientID)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied: client %s has %d item(s) totalling %d VND", clientID, summary.TotalItems, summary.TotalPrice)
}
