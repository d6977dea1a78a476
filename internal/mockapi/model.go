package mockapi

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	Phone     string `gorm:"size:32"`
	Password  string `gorm:"size:128;not null"` // bcrypt hash
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VerificationCode backs both the registration and the password-reset OTP
// flows; Purpose tells them apart.
type VerificationCode struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:128;index;not null"`
	Code      string `gorm:"size:8;not null"`
	Purpose   string `gorm:"size:16;index;not null"` // register, reset
	CreatedAt time.Time
}

type Address struct {
	ID         uint   `gorm:"primaryKey"`
	AccountID  uint   `gorm:"index;not null"`
	Name       string `gorm:"size:64"`
	City       string `gorm:"size:64"`
	State      string `gorm:"size:64"`
	Country    string `gorm:"size:64"`
	Address    string `gorm:"size:256"`
	Phone      string `gorm:"size:32"`
	PostalCode string `gorm:"size:16"`
}

type Product struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:128;not null"`
	NameEn     string `gorm:"size:128"`
	CategoryID uint   `gorm:"index"`
	Price      decimal.Decimal `gorm:"type:text;not null"`
	Image      string `gorm:"size:256"`
}

type Order struct {
	ID                uint   `gorm:"primaryKey"`
	AccountID         uint   `gorm:"index;not null"`
	Status            string `gorm:"size:32;index;not null"` // pending, processing, shipped, delivered, cancelled
	PaymentMethod     string `gorm:"size:32;not null"`
	ShippingAddressID uint
	BillingAddressID  uint
	Subtotal          decimal.Decimal `gorm:"type:text"`
	Discount          decimal.Decimal `gorm:"type:text"`
	DeliveryFee       decimal.Decimal `gorm:"type:text"`
	Total             decimal.Decimal `gorm:"type:text"`
	TransactionID     string          `gorm:"size:64;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderItem struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	PackSizeID uint
	Name       string          `gorm:"size:128"`
	Image      string          `gorm:"size:256"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:text;not null"`
}

type Favorite struct {
	AccountID uint `gorm:"primaryKey"`
	ProductID uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

func InitDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	if err := db.AutoMigrate(
		&Account{},
		&VerificationCode{},
		&Address{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Favorite{},
	); err != nil {
		log.Fatal(err)
	}

	seedProducts(db)
	return db
}

// seedProducts gives a fresh database something to sell.
func seedProducts(db *gorm.DB) {
	var count int64
	db.Model(&Product{}).Count(&count)
	if count > 0 {
		return
	}

	products := []Product{
		{Name: "زيت زيتون", NameEn: "Olive Oil 1L", CategoryID: 1, Price: decimal.RequireFromString("12.50"), Image: "/storage/products/olive-oil.jpg"},
		{Name: "عسل جبلي", NameEn: "Mountain Honey 500g", CategoryID: 1, Price: decimal.RequireFromString("18.00"), Image: "/storage/products/honey.jpg"},
		{Name: "قهوة عربية", NameEn: "Arabic Coffee 250g", CategoryID: 2, Price: decimal.RequireFromString("7.25"), Image: "/storage/products/coffee.jpg"},
		{Name: "تمر مجهول", NameEn: "Medjool Dates 1kg", CategoryID: 2, Price: decimal.RequireFromString("15.75"), Image: "/storage/products/dates.jpg"},
	}
	if err := db.Create(&products).Error; err != nil {
		log.Println("seed products:", err)
	}
}
