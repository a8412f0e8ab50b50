package database

import (
	"log"

	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migrations applied.")
}

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Supplier{},
		&models.Product{},
		&models.StockTransaction{},
		&models.StockParity{},
		&models.ProcurementOrder{},
		&models.ProcurementOrderItem{},
		&models.SupplierEvaluation{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
