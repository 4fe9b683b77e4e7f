package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dukkan-system/internal/database/models"
)

func strPtr(s string) *string { return &s }

// SeedDefaults creates the default admin/cashier accounts and a handful of
// sample products when the database is empty, so a fresh install is usable
// immediately.
func SeedDefaults(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	users := []struct {
		username, password, fullName, email, role string
	}{
		{"admin", "admin123", "İbrahim Usta", "admin@elektrikdukkani.com", models.RoleAdmin},
		{"kasiyer1", "kasiyer123", "Ahmet Yılmaz", "ahmet@elektrikdukkani.com", models.RoleCashier},
		{"kasiyer2", "kasiyer456", "Mehmet Demir", "mehmet@elektrikdukkani.com", models.RoleCashier},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{
			Username:     u.username,
			PasswordHash: string(hash),
			FullName:     u.fullName,
			Email:        strPtr(u.email),
			Role:         u.role,
			Active:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}
	log.Println("Default users created")

	products := []models.Product{
		{Barcode: "8690123456789", Name: "LED Ampul 9W E27 Beyaz Işık", Category: "Aydınlatma", Brand: "Philips",
			Stock: 45, MinStock: 10, BuyPrice: "12.50", SellPrice: "18.90", TaxRate: 18, Supplier: strPtr("Elektrik Toptan AŞ")},
		{Barcode: "8690987654321", Name: "Kablo 2.5mm NYA Siyah (100m)", Category: "Kablolar", Brand: "Nexans",
			Stock: 8, MinStock: 5, BuyPrice: "185.00", SellPrice: "285.00", TaxRate: 18, Supplier: strPtr("Kablo Dünyası")},
		{Barcode: "8691234567890", Name: "Anahtar Tekli Beyaz", Category: "Elektrik Aksesuarları", Brand: "Viko",
			Stock: 120, MinStock: 20, BuyPrice: "8.75", SellPrice: "14.50", TaxRate: 18, Supplier: strPtr("Viko Bayi")},
		{Barcode: "8692345678901", Name: "Priz Topraklı Beyaz", Category: "Elektrik Aksesuarları", Brand: "Schneider",
			Stock: 65, MinStock: 15, BuyPrice: "15.25", SellPrice: "24.90", TaxRate: 18, Supplier: strPtr("Schneider Bayi")},
		{Barcode: "8693456789012", Name: "Sigorta 16A C Tipi", Category: "Sigortalar", Brand: "ABB",
			Stock: 25, MinStock: 10, BuyPrice: "32.00", SellPrice: "48.50", TaxRate: 18, Supplier: strPtr("ABB Distribütörü")},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			return err
		}
	}
	log.Println("Sample products created")

	return nil
}
