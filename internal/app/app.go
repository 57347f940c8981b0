package app

import (
	"context"
	"log"
	"os"

	"casedesk/internal/config"
	"casedesk/internal/crm"
	"casedesk/internal/export"
	"casedesk/internal/httpx"
	"casedesk/internal/ingest"
	"casedesk/internal/llm"
	"casedesk/internal/notify"
	"casedesk/internal/review"
	"casedesk/internal/storage/sqlite"
	"casedesk/internal/summarize"
)

func Main() {
	cfg := config.LoadConfig()
	validateTimeout, generateTimeout := httpx.ConfigureClients(cfg.LLMValidateTimeoutSeconds, cfg.LLMGenerateTimeoutSeconds)
	log.Printf(
		"Config loaded. DB=%s DataDir=%s OutputDir=%s Provider=%s Model=%s ValidateTimeout=%s GenerateTimeout=%s Slack=%t",
		cfg.DBPath,
		cfg.DataDir,
		cfg.OutputDir,
		cfg.LLMProvider,
		cfg.LLMModel,
		validateTimeout,
		generateTimeout,
		cfg.SlackConfigured(),
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	os.MkdirAll(cfg.OutputDir, 0755)
	sink, err := export.NewSink(cfg.OutputDir)
	if err != nil {
		log.Fatalf("Failed to init export sink: %v", err)
	}
	log.Printf("Export dir: %s", cfg.OutputDir)

	store := crm.NewStore(cfg.DataDir)
	client := llm.NewClient(cfg.LLMProvider, cfg.LLMModel, cfg.LLMBaseURL)
	engine := summarize.NewEngine(store)
	orch := summarize.NewOrchestrator(engine, client, store)

	var notifier review.Notifier
	if cfg.SlackConfigured() {
		notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.ApprovalChannelID)
		log.Printf("Approval notifications enabled channel=%s", cfg.ApprovalChannelID)
	}
	svc := review.NewService(db, orch, sink, notifier)

	if cfg.ThreadsFile != "" {
		threads, err := ingest.LoadThreads(cfg.ThreadsFile)
		if err != nil {
			log.Fatalf("Failed to load threads file %s: %v", cfg.ThreadsFile, err)
		}
		result, err := ingest.Import(db, threads)
		if err != nil {
			log.Fatalf("Failed to import threads: %v", err)
		}
		log.Printf("Ingested threads file=%s created=%d updated=%d", cfg.ThreadsFile, result.Created, result.Updated)
	}

	ingest.StartAutoDraftScheduler(cfg, db, svc)

	log.Println("Starting case desk...")
	ingest.RunSweep(context.Background(), cfg, db, svc)

	select {}
}
