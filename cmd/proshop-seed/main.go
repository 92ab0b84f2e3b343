// Command proshop-seed populates the database with sample users and products
// for local development. Running it twice is safe: existing records are left
// alone.
package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/config"
	"github.com/proshop/proshop/pkg/orders"
	"github.com/proshop/proshop/pkg/products"
	"github.com/proshop/proshop/pkg/users"
)

type seedUser struct {
	name     string
	email    string
	password string
	isAdmin  bool
}

var seedUsers = []seedUser{
	{name: "Admin User", email: "admin@email.com", password: "123456", isAdmin: true},
	{name: "Jesse Pinkmen", email: "jesse@email.com", password: "123456"},
	{name: "Walter White", email: "walter@email.com", password: "12345678"},
}

var seedProducts = []*products.Product{
	{
		Name:         "Airpods Wireless Bluetooth Headphones",
		Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly",
		Brand:        "Apple",
		Category:     "Electronics",
		Image:        "/images/airpods.jpg",
		Price:        89.99,
		CountInStock: 10,
	},
	{
		Name:         "iPhone 13 Pro 256GB Memory",
		Description:  "Introducing the iPhone 13 Pro. A transformative triple-camera system",
		Brand:        "Apple",
		Category:     "Electronics",
		Image:        "/images/phone.jpg",
		Price:        599.99,
		CountInStock: 7,
	},
	{
		Name:         "Cannon EOS 80D DSLR Camera",
		Description:  "Characterized by versatile imaging specs, the Canon EOS 80D",
		Brand:        "Cannon",
		Category:     "Electronics",
		Image:        "/images/camera.jpg",
		Price:        929.99,
		CountInStock: 5,
	},
	{
		Name:         "Sony Playstation 5",
		Description:  "The ultimate home entertainment center starts with PlayStation",
		Brand:        "Sony",
		Category:     "Electronics",
		Image:        "/images/playstation.jpg",
		Price:        399.99,
		CountInStock: 11,
	},
	{
		Name:         "Logitech G-Series Gaming Mouse",
		Description:  "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse",
		Brand:        "Logitech",
		Category:     "Electronics",
		Image:        "/images/mouse.jpg",
		Price:        49.99,
		CountInStock: 7,
	},
	{
		Name:         "Amazon Echo Dot 3rd Generation",
		Description:  "Meet Echo Dot, our most popular smart speaker with a fabric design",
		Brand:        "Amazon",
		Category:     "Electronics",
		Image:        "/images/alexa.jpg",
		Price:        29.99,
		CountInStock: 0,
	},
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userStore := users.NewSQLStore(db)
	productStore := products.NewSQLStore(db)
	orderStore := orders.NewSQLStore(db)
	for _, migrate := range []func(context.Context) error{
		userStore.Migrate, productStore.Migrate, orderStore.Migrate,
	} {
		if err := migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var adminID string
	for _, su := range seedUsers {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.email, err)
		}
		u := &users.User{
			Name:         su.name,
			Email:        su.email,
			PasswordHash: hash,
			IsAdmin:      su.isAdmin,
		}
		err = userStore.Create(ctx, u)
		switch {
		case err == nil:
			log.Infof("Created user %s", su.email)
		case errors.Is(err, users.ErrDuplicateEmail):
			log.Infof("User %s already exists, skipping", su.email)
			existing, err := userStore.FindByEmail(ctx, su.email)
			if err != nil {
				log.Fatalf("Failed to look up %s: %v", su.email, err)
			}
			u = existing
		default:
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}
		if su.isAdmin {
			adminID = u.ID
		}
	}

	page, err := productStore.List(ctx, "", 1, 1)
	if err != nil {
		log.Fatalf("Failed to check products: %v", err)
	}
	if page.Total > 0 {
		log.Infof("Products already seeded (%d present), skipping", page.Total)
		return
	}

	for _, p := range seedProducts {
		p.CreatedBy = adminID
		if err := productStore.Create(ctx, p); err != nil {
			log.Fatalf("Failed to create product %q: %v", p.Name, err)
		}
		log.Infof("Created product %q", p.Name)
	}

	log.Infof("Seed complete: %d users, %d products", len(seedUsers), len(seedProducts))
}
