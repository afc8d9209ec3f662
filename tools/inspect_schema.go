// Prints the DDL that AutoMigrate produces, using an in-memory SQLite database.
package main

import (
	"fmt"
	"log"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/mapsdb/internal/database"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := database.Open(puresqlite.Open(":memory:"), 1, logger.Silent)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	type object struct {
		Type string
		Name string
		SQL  string
	}
	var objects []object
	db.Raw("SELECT type, name, sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY tbl_name, type DESC, name").Scan(&objects)

	for _, o := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s\n", o.Type, o.Name, o.SQL)
	}
}
