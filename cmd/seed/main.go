package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/florapedia/api/internal/auth"
	"github.com/florapedia/api/internal/config"
	"github.com/florapedia/api/internal/database"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	familiesPath := flag.String("families", "data/families.txt", "Path to botanical family list file")
	attributesPath := flag.String("attributes", "data/attributes.txt", "Path to attribute list file")
	adminUser := flag.String("admin-user", "", "Username for the initial super admin (skipped when empty)")
	adminEmail := flag.String("admin-email", "", "Email for the initial super admin")
	adminPassword := flag.String("admin-password", "", "Password for the initial super admin")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	families, err := loadNameList(*familiesPath)
	if err != nil {
		log.Fatalf("Failed to load family list: %v", err)
	}
	log.Printf("Loaded %d families from %s", len(families), *familiesPath)

	inserted, skipped := seedNames(db, "families", families)
	log.Printf("Families: inserted=%d, skipped=%d", inserted, skipped)

	attributes, err := loadNameList(*attributesPath)
	if err != nil {
		log.Printf("Warning: Failed to load attribute list: %v", err)
	} else {
		log.Printf("Loaded %d attributes from %s", len(attributes), *attributesPath)
		inserted, skipped = seedNames(db, "attributes", attributes)
		log.Printf("Attributes: inserted=%d, skipped=%d", inserted, skipped)
	}

	if *adminUser != "" {
		if err := seedSuperAdmin(db, *adminUser, *adminEmail, *adminPassword); err != nil {
			log.Fatalf("Failed to create super admin: %v", err)
		}
	}

	log.Println("Seeding complete")
}

func loadNameList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	return names, scanner.Err()
}

func seedNames(db *gorm.DB, table string, names []string) (inserted int, skipped int) {
	for _, name := range names {
		result := db.Exec(`
			INSERT INTO `+table+` (id, name, created_at, updated_at)
			VALUES (gen_random_uuid(), ?, NOW(), NOW())
			ON CONFLICT (name) DO NOTHING
		`, name)

		if result.Error != nil {
			log.Printf("Error inserting %s into %s: %v", name, table, result.Error)
			skipped++
			continue
		}

		if result.RowsAffected > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped
}

func seedSuperAdmin(db *gorm.DB, username, email, password string) error {
	if email == "" || password == "" {
		log.Fatal("-admin-email and -admin-password are required with -admin-user")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	result := db.Exec(`
		INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, 'super-admin', NOW(), NOW())
		ON CONFLICT (username) DO NOTHING
	`, username, email, hash)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Created super admin %s", username)
	} else {
		log.Printf("Super admin %s already exists, skipped", username)
	}
	return nil
}
