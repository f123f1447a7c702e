// Package seeders loads a small set of demo accounts, transactions and
// promotions so the API is usable straight after boot. Seeding is
// idempotent, a second run against a store that already holds the demo
// accounts is a no-op.
package seeders

import (
	"log"
	"time"

	"github.com/cradoe/gopass"
	"github.com/lunawallet/luna/internal/store"
)

type Seeder struct {
	Store store.Store
}

func New(st store.Store) *Seeder {
	return &Seeder{
		Store: st,
	}
}

// demoPassword is the login password of every seeded account.
const demoPassword = "password123"

func (seeder *Seeder) Run() error {
	_, found, err := seeder.Store.Account().GetByEmail("john.doe@example.com")
	if err != nil {
		return err
	}
	if found {
		log.Println("Demo data already present, skipping seeding")
		return nil
	}

	hashedPassword, err := gopass.Hash(demoPassword)
	if err != nil {
		return err
	}

	ids, err := seeder.seedAccounts(hashedPassword)
	if err != nil {
		return err
	}
	if err := seeder.seedTransactions(ids); err != nil {
		return err
	}
	if err := seeder.seedPromotions(); err != nil {
		return err
	}

	log.Println("Demo data seeded")
	return nil
}

func mustParse(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
