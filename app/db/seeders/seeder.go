package seeders

import (
	"fmt"
	"log"

	"github.com/tkbglow/glow-api/app/db/fakers"
	"github.com/tkbglow/glow-api/app/models"
	"gorm.io/gorm"
)

const DefaultProductCount = 24

type Seeder struct {
	Name   string
	Seeder interface{}
}

func SeedersRegister(products int) []Seeder {
	seeders := make([]Seeder, 0, products+8)
	for i := 0; i < products; i++ {
		seeders = append(seeders, Seeder{Name: "product", Seeder: fakers.ProductFaker()})
	}
	for _, row := range fakers.DeliveryChargeFakers() {
		seeders = append(seeders, Seeder{Name: "delivery charge", Seeder: row})
	}
	seeders = append(seeders, Seeder{Name: "promo", Seeder: fakers.PromoFaker()})
	return seeders
}

// DBSeed inserts sample data. Delivery charges and promos that already exist
// are left alone so the command can be re-run.
func DBSeed(db *gorm.DB, products int) error {
	var created int
	for _, seeder := range SeedersRegister(products) {
		var res *gorm.DB
		switch v := seeder.Seeder.(type) {
		case *models.DeliveryCharge:
			res = db.Where("state = ? AND city = ? AND min_subtotal = ?", v.State, v.City, v.MinSubtotal).FirstOrCreate(v)
		case *models.Promo:
			res = db.Where("code = ?", v.Code).FirstOrCreate(v)
		default:
			res = db.Create(v)
		}
		if res.Error != nil {
			return fmt.Errorf("seed %s: %w", seeder.Name, res.Error)
		}
		created += int(res.RowsAffected)
	}
	log.Printf("Seeders.DBSeed: %d rows created", created)
	return nil
}
