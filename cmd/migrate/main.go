package main

import (
	"log"

	"phluowise-billing-be/internal/config"
	"phluowise-billing-be/internal/model"
	"phluowise-billing-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	color.Cyan("Running billing schema migration...")

	err = db.AutoMigrate(
		&model.Subscription{},
		&model.PaymentTransaction{},
		&model.PaymentMethod{},
	)
	if err != nil {
		color.Red("Migration failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Migration complete:")
	color.Green("  - subscriptions")
	color.Green("  - payment_transactions")
	color.Green("  - payment_methods")
}
