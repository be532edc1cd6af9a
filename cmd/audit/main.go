package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/florapedia/api/internal/config"
	"github.com/florapedia/api/internal/model"
	"github.com/florapedia/api/internal/validator"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Issue struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

func main() {
	workers := flag.Int("workers", 10, "Number of parallel workers")
	outputFile := flag.String("output", "audit_results.json", "Output file for results")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var total int64
	db.Model(&model.Plant{}).Count(&total)

	fmt.Printf("Auditing %d species with %d workers...\n", total, *workers)

	plantChan := make(chan model.Plant, *workers*10)
	issueChan := make(chan Issue, 1000)

	var processed int64
	var issueCount int64
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plant := range plantChan {
				issues := auditPlant(plant)
				for _, issue := range issues {
					issueChan <- issue
					atomic.AddInt64(&issueCount, 1)
				}
				p := atomic.AddInt64(&processed, 1)
				if p%1000 == 0 {
					fmt.Printf("Progress: %d/%d (%.1f%%), Issues found: %d\n",
						p, total, float64(p)/float64(total)*100, atomic.LoadInt64(&issueCount))
				}
			}
		}()
	}

	// Collect issues
	var issues []Issue
	var issuesMu sync.Mutex
	done := make(chan bool)
	go func() {
		for issue := range issueChan {
			issuesMu.Lock()
			issues = append(issues, issue)
			issuesMu.Unlock()
		}
		done <- true
	}()

	// Fetch species in batches
	startTime := time.Now()
	batchSize := 500
	offset := 0
	plantIDs := make(map[string]bool)
	for {
		var plants []model.Plant
		result := db.Preload("Family").
			Order("created_at ASC").
			Offset(offset).
			Limit(batchSize).
			Find(&plants)

		if result.Error != nil {
			log.Printf("Database error: %v", result.Error)
			break
		}

		if len(plants) == 0 {
			break
		}

		for _, plant := range plants {
			plantIDs[plant.ID] = true
			plantChan <- plant
		}
		offset += batchSize
	}

	close(plantChan)
	wg.Wait()
	close(issueChan)
	<-done

	// Contributions and history are small relative to the catalog, audit them inline
	issues = append(issues, auditContributions(db, plantIDs)...)
	issues = append(issues, auditHistory(db)...)

	elapsed := time.Since(startTime)
	fmt.Printf("\n=== Audit Complete ===\n")
	fmt.Printf("Total species: %d\n", total)
	fmt.Printf("Issues found: %d\n", len(issues))
	fmt.Printf("Time elapsed: %v\n", elapsed)

	// Group issues by type
	issuesByType := make(map[string][]Issue)
	for _, issue := range issues {
		issuesByType[issue.Type] = append(issuesByType[issue.Type], issue)
	}

	fmt.Printf("\n=== Issues by Type ===\n")
	for typ, typeIssues := range issuesByType {
		fmt.Printf("%s: %d\n", typ, len(typeIssues))
	}

	// Save results
	output := map[string]interface{}{
		"reportId":    uuid.NewString(),
		"generatedAt": time.Now().UTC(),
		"summary": map[string]interface{}{
			"totalSpecies": total,
			"issues":       len(issues),
			"elapsed":      elapsed.String(),
		},
		"issuesByType": issuesByType,
		"issues":       issues,
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	if err := os.WriteFile(*outputFile, jsonData, 0644); err != nil {
		log.Printf("Failed to write output file: %v", err)
	} else {
		fmt.Printf("\nResults saved to %s\n", *outputFile)
	}
}

func auditPlant(plant model.Plant) []Issue {
	var issues []Issue

	report := func(typ, details string) {
		issues = append(issues, Issue{
			Entity:  "plant",
			ID:      plant.ID,
			Type:    typ,
			Details: details,
		})
	}

	// Check 1: Scientific name fails binomial validation
	if !validator.ValidScientificName(plant.ScientificName) {
		report("INVALID_SCIENTIFIC_NAME", fmt.Sprintf("'%s' is not a valid binomial", plant.ScientificName))
	}

	// Check 2: Orphaned family reference
	if plant.FamilyID != "" && plant.Family.ID == "" {
		report("DANGLING_FAMILY", fmt.Sprintf("Family %s does not exist", plant.FamilyID))
	}

	// Check 3: Blank common names survive in the array
	for i, name := range plant.CommonNames {
		if strings.TrimSpace(name) == "" {
			report("BLANK_COMMON_NAME", fmt.Sprintf("Common name %d is blank", i))
			break
		}
	}

	// Check 4: Common name duplicates the scientific name
	for _, name := range plant.CommonNames {
		if strings.EqualFold(strings.TrimSpace(name), plant.ScientificName) {
			report("ECHOED_SCIENTIFIC_NAME", fmt.Sprintf("Common name '%s' repeats the scientific name", name))
			break
		}
	}

	// Check 5: Description sections with empty names or no details
	for i, section := range plant.SpeciesDescription {
		if strings.TrimSpace(section.Section) == "" {
			report("EMPTY_SECTION_NAME", fmt.Sprintf("Section %d has no name", i))
		}
		if len(section.Details) == 0 {
			report("EMPTY_SECTION", fmt.Sprintf("Section '%s' has no details", section.Section))
		}
		for j, detail := range section.Details {
			if strings.TrimSpace(detail.Content) == "" {
				report("EMPTY_DETAIL_CONTENT", fmt.Sprintf("Section '%s' detail %d has no content", section.Section, j))
			}
		}
	}

	// Check 6: Blank image URLs
	for i, image := range plant.Images {
		if strings.TrimSpace(image) == "" {
			report("BLANK_IMAGE", fmt.Sprintf("Image %d is blank", i))
			break
		}
	}

	return issues
}

func auditContributions(db *gorm.DB, plantIDs map[string]bool) []Issue {
	var issues []Issue

	batchSize := 500
	offset := 0
	for {
		var contributions []model.Contribution
		result := db.Order("created_at ASC").Offset(offset).Limit(batchSize).Find(&contributions)
		if result.Error != nil {
			log.Printf("Database error: %v", result.Error)
			break
		}
		if len(contributions) == 0 {
			break
		}

		for _, c := range contributions {
			// Update proposals must point at a live species
			if c.Type == model.ContributionTypeUpdate {
				if c.PlantRef == nil || *c.PlantRef == "" {
					issues = append(issues, Issue{
						Entity:  "contribution",
						ID:      c.ID,
						Type:    "MISSING_PLANT_REF",
						Details: "Update proposal has no species reference",
					})
				} else if c.Status == model.StatusPending && !plantIDs[*c.PlantRef] {
					issues = append(issues, Issue{
						Entity:  "contribution",
						ID:      c.ID,
						Type:    "DANGLING_PLANT_REF",
						Details: fmt.Sprintf("Pending update references missing species %s", *c.PlantRef),
					})
				}
			}

			// Decided contributions must carry reviewer metadata
			if c.Status != model.StatusPending && c.ReviewedBy == nil {
				issues = append(issues, Issue{
					Entity:  "contribution",
					ID:      c.ID,
					Type:    "MISSING_REVIEWER",
					Details: fmt.Sprintf("Contribution is %s but has no reviewer", c.Status),
				})
			}
			if c.Status == model.StatusRejected && strings.TrimSpace(c.ReviewMessage) == "" {
				issues = append(issues, Issue{
					Entity:  "contribution",
					ID:      c.ID,
					Type:    "REJECTION_WITHOUT_REASON",
					Details: "Rejected contribution has no review message",
				})
			}
		}

		offset += batchSize
	}

	return issues
}

func auditHistory(db *gorm.DB) []Issue {
	var issues []Issue

	batchSize := 500
	offset := 0
	for {
		var entries []model.History
		result := db.Order("id ASC").Offset(offset).Limit(batchSize).Find(&entries)
		if result.Error != nil {
			log.Printf("Database error: %v", result.Error)
			break
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if len(entry.Before) == 0 {
				continue
			}
			if _, err := entry.Snapshot(); err != nil {
				issues = append(issues, Issue{
					Entity:  "history",
					ID:      fmt.Sprintf("%d", entry.ID),
					Type:    "UNPARSABLE_SNAPSHOT",
					Details: fmt.Sprintf("Failed to parse snapshot: %v", err),
				})
			}
		}

		offset += batchSize
	}

	return issues
}
