package testutil

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/crypto"
)

// T0 is the fixed start of every test timeline.
var T0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func CreateFixtureDb() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := entity.MigrateTable(db); err != nil {
		panic(err)
	}

	return db
}

// RandomWallet returns a wallet identifier that is unique enough for
// concurrent fixtures.
func RandomWallet() string {
	return fmt.Sprintf("0xwallet%06d", crypto.RandIntn(1000000))
}

// Seed returns a deterministic 32-byte seed filled with b.
func Seed(b byte) []byte {
	seed := make([]byte, crypto.SeedLength)
	for i := range seed {
		seed[i] = b
	}

	return seed
}
