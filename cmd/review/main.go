package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/florapedia/api/internal/client"
	"github.com/florapedia/api/internal/diff"
	"github.com/florapedia/api/internal/model"
	"github.com/florapedia/api/internal/review"
)

func main() {
	apiURL := flag.String("api", "http://localhost:4000", "Catalog API base URL")
	token := flag.String("token", os.Getenv("CATALOG_TOKEN"), "Bearer token (defaults to CATALOG_TOKEN)")
	id := flag.String("id", "", "Contribution ID to review")
	action := flag.String("action", "show", "show, approve or reject")
	message := flag.String("message", "", "Review note (required for reject)")
	flag.Parse()

	if *id == "" {
		log.Fatal("-id is required")
	}
	if *token == "" {
		log.Fatal("a bearer token is required, set -token or CATALOG_TOKEN")
	}

	ctx := context.Background()
	catalog := client.NewCatalogClient(*apiURL)

	contribution, err := catalog.GetContributionByID(ctx, *id, *token)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			log.Fatalf("Contribution %s not found", *id)
		}
		log.Fatalf("Failed to fetch contribution: %v", err)
	}

	printContribution(contribution)

	if contribution.Type == model.ContributionTypeUpdate && contribution.PlantRef != nil {
		original, err := catalog.GetPlantByID(ctx, *contribution.PlantRef, *token)
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				fmt.Println("\nReferenced species no longer exists, no comparison available")
			} else {
				log.Fatalf("Failed to fetch referenced species: %v", err)
			}
		} else {
			printDiff(diff.Compare(original, contribution.Data.Plant))
		}
	}

	if *action == "show" {
		return
	}

	session := review.NewSession(contribution, catalog, *token)
	switch *action {
	case "approve":
		err = session.Approve(ctx, *message)
	case "reject":
		err = session.Reject(ctx, *message)
	default:
		log.Fatalf("Unknown action %q, expected show, approve or reject", *action)
	}

	if err != nil {
		if review.IsPrecondition(err) {
			log.Fatalf("Decision refused: %v", err)
		}
		log.Fatalf("Moderation failed, contribution unchanged and retryable: %v", err)
	}

	updated := session.Contribution()
	fmt.Printf("\nContribution %s is now %s\n", updated.ID, updated.Status)
	if updated.ReviewMessage != "" {
		fmt.Printf("Review note: %s\n", updated.ReviewMessage)
	}
}

func printContribution(c *model.Contribution) {
	fmt.Printf("Contribution %s\n", c.ID)
	fmt.Printf("  Type:      %s\n", c.Type)
	fmt.Printf("  Status:    %s\n", c.Status)
	fmt.Printf("  Submitter: %s\n", c.User.Username)
	if c.Message != "" {
		fmt.Printf("  Message:   %s\n", c.Message)
	}
	fmt.Printf("  Species:   %s (%s)\n", c.Data.Plant.ScientificName, c.Data.Plant.Family)
	if len(c.Data.NewImages) > 0 {
		fmt.Printf("  New images: %d\n", len(c.Data.NewImages))
	}
}

func printDiff(r diff.Result) {
	fmt.Println("\nComparison against the stored record:")
	if !r.Changed {
		fmt.Println("  No changes")
		return
	}

	printField := func(name string, f diff.FieldChange) {
		if f.Changed {
			fmt.Printf("  %-16s %q -> %q\n", name+":", f.Before, f.After)
		}
	}
	printField("Scientific name", r.ScientificName)
	printField("Description", r.Description)
	printField("Family", r.Family)

	printSet := func(name string, s diff.SetDiff) {
		if !s.Changed {
			return
		}
		values := make([]string, 0, len(s.Elements))
		for _, e := range s.Elements {
			if e.New {
				values = append(values, "+"+e.Value)
			} else {
				values = append(values, e.Value)
			}
		}
		fmt.Printf("  %-16s %s\n", name+":", strings.Join(values, ", "))
	}
	printSet("Common names", r.CommonNames)
	printSet("Attributes", r.Attributes)
	printSet("Images", r.Images)

	for _, s := range r.Sections {
		if s.Modified {
			fmt.Printf("  Section %q modified\n", s.Section.Section)
		}
	}
}
