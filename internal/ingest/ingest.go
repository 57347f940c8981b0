// Package ingest loads source conversation threads into the record store
// and runs the scheduled auto-draft sweep.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"casedesk/internal/config"
	"casedesk/internal/domain"
	"casedesk/internal/review"
	"casedesk/internal/storage/sqlite"
)

// ImportResult tracks counters for one ingestion run.
type ImportResult struct {
	Created int
	Updated int
}

// LoadThreads reads a threads JSON file: either {"threads": [...]} or a
// bare array.
func LoadThreads(path string) ([]domain.Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Threads []domain.Thread `json:"threads"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Threads) > 0 {
		return wrapped.Threads, nil
	}

	var threads []domain.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("parsing threads file %s: %w", path, err)
	}
	return threads, nil
}

// Import upserts the given threads. Threads without an id are skipped.
func Import(db *sql.DB, threads []domain.Thread) (ImportResult, error) {
	var result ImportResult
	for _, t := range threads {
		if t.ThreadID == "" {
			log.Printf("ingest skipped thread without thread_id subject=%q", t.Subject)
			continue
		}
		created, err := sqlite.UpsertThread(db, t)
		if err != nil {
			return result, fmt.Errorf("upserting thread %s: %w", t.ThreadID, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// RunSweep ingests the configured threads file (when set) and drafts a
// rule-based summary for every thread that has none yet.
func RunSweep(ctx context.Context, cfg config.Config, db *sql.DB, svc *review.Service) {
	if cfg.ThreadsFile != "" {
		threads, err := LoadThreads(cfg.ThreadsFile)
		if err != nil {
			log.Printf("auto-draft ingest error file=%s err=%v", cfg.ThreadsFile, err)
		} else {
			result, err := Import(db, threads)
			if err != nil {
				log.Printf("auto-draft import error: %v", err)
			} else {
				log.Printf("auto-draft ingest complete created=%d updated=%d", result.Created, result.Updated)
			}
		}
	}

	ids, err := sqlite.ListThreadIDsWithoutSummary(db)
	if err != nil {
		log.Printf("auto-draft list error: %v", err)
		return
	}
	drafted := 0
	for _, id := range ids {
		if _, err := svc.Summarize(ctx, id, ""); err != nil {
			log.Printf("auto-draft summarize error thread=%s err=%v", id, err)
			continue
		}
		drafted++
	}
	if len(ids) > 0 {
		log.Printf("auto-draft sweep complete drafted=%d of %d", drafted, len(ids))
	}
}

// StartAutoDraftScheduler starts a cron-based scheduler that periodically
// runs the ingest + draft sweep. The schedule is a standard 5-field cron
// expression (minute hour day-of-month month day-of-week).
func StartAutoDraftScheduler(cfg config.Config, db *sql.DB, svc *review.Service) {
	schedule := strings.TrimSpace(cfg.AutoDraftSchedule)
	if schedule == "" {
		log.Println("Auto-draft disabled (auto_draft_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid auto_draft_schedule '%s': %v, auto-draft disabled", schedule, err)
		return
	}
	log.Printf("Auto-draft scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next auto-draft at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			RunSweep(context.Background(), cfg, db, svc)
		}
	}()
}
