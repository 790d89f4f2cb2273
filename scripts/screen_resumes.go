package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"alfredoptarigan/resume-shortlister/internal/bootstrap"
	"alfredoptarigan/resume-shortlister/internal/config"
	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/services"
)

type options struct {
	role string
	dir  string
	out  string
}

func main() {
	role := flag.String("role", "", "job role to screen against")
	dir := flag.String("dir", "./resumes", "directory containing resumes")
	out := flag.String("out", services.ExportFileName, "CSV output path")
	flag.Parse()

	log.Println("🚀 Starting resume screening...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx := context.Background()

	comps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}

	code := execute(ctx, comps, options{role: *role, dir: *dir, out: *out})
	comps.Close()
	os.Exit(code)
}

// execute screens the directory and returns the process exit code: 0 when
// every resume was scored, 1 otherwise.
func execute(ctx context.Context, comps *bootstrap.Components, opts options) int {
	if opts.role == "" {
		log.Printf("❌ -role is required, one of: %s", strings.Join(comps.Catalog.Roles(), ", "))
		return 1
	}

	uploads, err := readResumes(opts.dir)
	if err != nil {
		log.Printf("❌ Failed to read resumes: %v", err)
		return 1
	}
	if len(uploads) == 0 {
		log.Printf("❌ No supported resumes (%s) found in %s", strings.Join(services.SupportedExtensions, ", "), opts.dir)
		return 1
	}

	batch, err := comps.Screener.Screen(ctx, opts.role, uploads)
	if err != nil {
		log.Printf("❌ Screening failed: %v", err)
		return 1
	}

	if err := writeResults(opts.out, batch.Results); err != nil {
		log.Printf("❌ Failed to write CSV: %v", err)
		return 1
	}

	printSummary(batch, opts.out)

	if batch.Report.Summary.Failed > 0 {
		return 1
	}
	return 0
}

func writeResults(path string, results []models.EvaluationResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := services.WriteCSV(file, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// readResumes loads every supported file in dir, in name order.
func readResumes(dir string) ([]models.ResumeUpload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !services.IsSupportedDocument(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	uploads := make([]models.ResumeUpload, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, models.ResumeUpload{Name: name, Data: data})
	}
	return uploads, nil
}

func printSummary(batch *models.ScreeningBatch, out string) {
	summary := batch.Report.Summary

	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Screening Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Role:       %s", batch.Role)
	log.Printf("✅ Scored:  %d", summary.Succeeded)
	log.Printf("❌ Failed:  %d", summary.Failed)
	log.Printf("📁 Total:   %d", summary.Total)
	for _, kind := range models.FailureKinds {
		if n := summary.FailuresByKind[kind]; n > 0 {
			log.Printf("   %-18s %d", kind, n)
		}
	}
	log.Println(strings.Repeat("=", 60))

	if len(batch.Report.Top) > 0 {
		log.Println("🏆 Top candidates:")
		for _, r := range batch.Report.Top {
			log.Printf("   %d. %s - %d/100", r.Rank, r.Name, r.Score)
		}
	}

	log.Printf("💾 Results written to %s", out)
}
