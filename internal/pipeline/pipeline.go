// Package pipeline orchestrates the full generation flow: parse
// documents, chunk, extract quote-backed facts, merge per-document
// evidence ledgers, plan the outline, draft the script and verify its
// claims before release.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/narravox/narravox/internal/cache"
	"github.com/narravox/narravox/internal/chunker"
	"github.com/narravox/narravox/internal/docparse"
	"github.com/narravox/narravox/internal/extract"
	"github.com/narravox/narravox/internal/ledger"
	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/outline"
	"github.com/narravox/narravox/internal/task"
	"github.com/narravox/narravox/internal/verify"
	"github.com/narravox/narravox/internal/worker"
	"github.com/narravox/narravox/internal/writer"
)

// InputFile is one uploaded source document
type InputFile struct {
	Filename string
	Data     []byte
}

// Orchestrator wires the pipeline stages together and drives them as
// background tasks tracked by the task manager
type Orchestrator struct {
	cfg      *model.Config
	tasks    *task.Manager
	parser   *docparse.Registry
	chunker  *chunker.Chunker
	extract  *extract.Extractor
	merger   *ledger.Merger
	planner  *outline.Planner
	writer   *writer.Writer
	verifier *verify.Verifier
	limiter  *worker.Limiter
	provider string
	exporter *Exporter
	log      *logging.Logger
}

// NewOrchestrator builds the pipeline from configuration. The generator
// is shared by all stages and wrapped with the response cache when
// caching is enabled.
func NewOrchestrator(cfg *model.Config, tasks *task.Manager, log *logging.Logger) (*Orchestrator, error) {
	gen, err := llm.NewGenerator(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	gen = wrapCache(gen, cfg.Cache)
	return newOrchestrator(cfg, tasks, gen, log), nil
}

func newOrchestrator(cfg *model.Config, tasks *task.Manager, gen llm.Generator, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		tasks:    tasks,
		parser:   docparse.NewRegistry(),
		chunker:  chunker.New(cfg.Chunking),
		extract:  extract.New(gen, cfg.LLM, log),
		merger:   ledger.New(gen, cfg.LLM, log),
		planner:  outline.New(gen, cfg.LLM, cfg.Script, log),
		writer:   writer.New(gen, cfg.LLM, log),
		verifier: verify.New(gen, cfg.LLM, log),
		limiter:  worker.NewLimiter(cfg.LLM.RatePerSec, cfg.LLM.RateBurst),
		provider: cfg.LLM.Provider,
		exporter: NewExporter(cfg.Output.Dir),
		log:      log,
	}
}

// wrapCache adds response caching: memory-only by default, layered
// memory+disk when a cache directory is configured
func wrapCache(gen llm.Generator, cfg model.CacheConfig) llm.Generator {
	if !cfg.Enabled {
		return gen
	}
	var store cache.Cache
	if cfg.Dir != "" {
		store = cache.NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
	} else {
		store = cache.NewMemoryCache(cfg.TTL, 10*time.Minute)
	}
	return llm.NewCachedGenerator(gen, store, cfg.TTL)
}

// Supports reports whether the filename's format can be parsed
func (o *Orchestrator) Supports(filename string) bool {
	return o.parser.Supports(filename)
}

// Submit validates the upload, registers a task and starts generation
// in the background. It returns the task id immediately.
func (o *Orchestrator) Submit(params model.Params, files []InputFile) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no files uploaded")
	}
	if max := o.cfg.Server.MaxFiles; max > 0 && len(files) > max {
		return "", fmt.Errorf("too many files: %d (limit %d)", len(files), max)
	}
	for _, f := range files {
		if !o.parser.Supports(f.Filename) {
			return "", fmt.Errorf("unsupported file format: %s", f.Filename)
		}
		if len(f.Data) == 0 {
			return "", fmt.Errorf("empty file: %s", f.Filename)
		}
	}

	params.FileCount = len(files)
	if params.TargetDurationSec <= 0 {
		params.TargetDurationSec = o.cfg.Script.DefaultDurationSec
	}
	if params.Language == "" {
		params.Language = "en"
	}

	id := o.tasks.Create(params)
	go o.run(id, params, files)
	return id, nil
}

// run executes the full pipeline for one task. Any panic is converted
// into a task failure so the process survives.
func (o *Orchestrator) run(id string, params model.Params, files []InputFile) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("pipeline panic", "task", id, "panic", r)
			o.tasks.Fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx := context.Background()

	docs, err := o.parseStage(id, files)
	if err != nil {
		o.tasks.Fail(id, err.Error())
		return
	}

	chunksByDoc, coverage := o.chunkStage(id, docs)

	ledgers, audit, err := o.extractStage(ctx, id, docs, chunksByDoc, coverage)
	if err != nil {
		o.tasks.Fail(id, err.Error())
		return
	}

	plan, err := o.outlineStage(ctx, id, ledgers, params)
	if err != nil {
		o.tasks.Fail(id, err.Error())
		return
	}

	draft, err := o.writeStage(ctx, id, plan, ledgers)
	if err != nil {
		o.tasks.Fail(id, err.Error())
		return
	}

	verification := o.verifyStage(ctx, id, draft, ledgers)

	audit.Ledgers = ledgers
	audit.Verdict = verification.Verdict
	audit.Issues = verification.Issues

	result := o.exportStage(id, params, plan, verification, audit)
	o.tasks.Complete(id, result, audit)
}

// parseStage turns raw uploads into structured documents. A file that
// cannot be parsed fails the task; the caller chose the inputs.
func (o *Orchestrator) parseStage(id string, files []InputFile) ([]*model.Document, error) {
	o.tasks.UpdateStage(id, model.StageParsing, "parsing documents", model.SeverityInfo)

	docs := make([]*model.Document, 0, len(files))
	for i, f := range files {
		doc, err := o.parser.Parse(f.Data, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Filename, err)
		}
		doc.ID = fmt.Sprintf("doc%d", i+1)
		docs = append(docs, doc)
		o.log.Info("parsed document", "task", id, "doc", doc.ID,
			"file", f.Filename, "paragraphs", doc.TotalParagraphs())
	}
	return docs, nil
}

// chunkStage splits every document into extraction chunks and records
// coverage. Incomplete coverage degrades the detail message but never
// stops the pipeline.
func (o *Orchestrator) chunkStage(id string, docs []*model.Document) (map[string][]model.Chunk, []model.DocumentCoverage) {
	o.tasks.UpdateStage(id, model.StageChunking, "chunking documents", model.SeverityInfo)

	chunksByDoc := make(map[string][]model.Chunk, len(docs))
	coverage := make([]model.DocumentCoverage, 0, len(docs))
	for _, doc := range docs {
		chunks := o.chunker.ChunkDocument(doc)
		report := o.chunker.VerifyCoverage(doc, chunks)
		chunksByDoc[doc.ID] = chunks
		coverage = append(coverage, model.DocumentCoverage{
			DocID:    doc.ID,
			Filename: doc.Filename,
			Coverage: report,
		})
		if !report.IsComplete {
			o.log.Warn("incomplete chunk coverage", "task", id, "doc", doc.ID,
				"rate", report.CoverageRate, "missing", report.MissingRanges)
			o.tasks.UpdateStage(id, model.StageChunking,
				fmt.Sprintf("coverage below threshold for %s", doc.Filename),
				model.SeverityWarning)
		}
	}
	return chunksByDoc, coverage
}

// extractStage runs the map step (per-chunk fact extraction over the
// worker pool) and the reduce step (per-document ledger merge) for
// every document in turn
func (o *Orchestrator) extractStage(ctx context.Context, id string, docs []*model.Document, chunksByDoc map[string][]model.Chunk, coverage []model.DocumentCoverage) ([]model.EvidenceLedger, *model.AuditReport, error) {
	o.tasks.UpdateStage(id, model.StageExtracting, "extracting evidence", model.SeverityInfo)

	totalChunks := 0
	for _, chunks := range chunksByDoc {
		totalChunks += len(chunks)
	}
	docTotal := len(docs)
	o.tasks.UpdateProgress(id, task.ProgressUpdate{
		DocTotal:   &docTotal,
		ChunkTotal: &totalChunks,
	})

	batch := worker.NewBatchExtractor(o.extract, o.limiter, o.provider, o.cfg.Concurrency.ExtractionWorkers)

	ledgers := make([]model.EvidenceLedger, 0, len(docs))
	processed := 0 // Chunks that yielded facts, for the audit report
	handled := 0   // All chunks run, successful or not; progress offset
	for i, doc := range docs {
		docCurrent := i + 1
		o.tasks.UpdateProgress(id, task.ProgressUpdate{DocCurrent: &docCurrent})
		o.tasks.UpdateStage(id, model.StageExtracting,
			fmt.Sprintf("extracting facts from %s", doc.Filename), model.SeverityInfo)

		base := handled
		batch.OnProgress(func(done, total int) {
			cur := base + done
			o.tasks.UpdateProgress(id, task.ProgressUpdate{ChunkCurrent: &cur})
		})

		chunkFacts := batch.ExtractChunks(ctx, chunksByDoc[doc.ID])
		handled += len(chunkFacts)
		for _, cf := range chunkFacts {
			if cf.Error == "" {
				processed++
			} else {
				o.log.Warn("chunk extraction failed", "task", id, "chunk", cf.ChunkID, "error", cf.Error)
			}
		}

		o.tasks.UpdateStage(id, model.StageExtracting,
			fmt.Sprintf("merging evidence for %s", doc.Filename), model.SeverityInfo)
		led, err := o.merger.Merge(ctx, doc.ID, chunkFacts)
		if err != nil {
			return nil, nil, fmt.Errorf("merge ledger for %s: %w", doc.Filename, err)
		}
		if led.Title == "" {
			led.Title = doc.Title
		}
		led.Filename = doc.Filename
		ledgers = append(ledgers, *led)
	}

	audit := &model.AuditReport{
		Documents:       coverage,
		ChunksTotal:     totalChunks,
		ChunksProcessed: processed,
	}
	return ledgers, audit, nil
}

func (o *Orchestrator) outlineStage(ctx context.Context, id string, ledgers []model.EvidenceLedger, params model.Params) (*model.Outline, error) {
	o.tasks.UpdateStage(id, model.StageOutlining, "planning episode outline", model.SeverityInfo)

	plan, err := o.planner.Plan(ctx, ledgers, params)
	if err != nil {
		return nil, fmt.Errorf("plan outline: %w", err)
	}
	if plan.Fallback {
		o.tasks.UpdateStage(id, model.StageOutlining, "using fallback outline", model.SeverityWarning)
	}
	return plan, nil
}

func (o *Orchestrator) writeStage(ctx context.Context, id string, plan *model.Outline, ledgers []model.EvidenceLedger) (*model.Draft, error) {
	o.tasks.UpdateStage(id, model.StageWriting, "drafting script", model.SeverityInfo)

	draft, err := o.writer.Draft(ctx, plan, ledgers)
	if err != nil {
		return nil, fmt.Errorf("draft script: %w", err)
	}
	return draft, nil
}

// verifyStage never fails the task: on provider trouble the verifier
// degrades to a FAIL verdict over the unpatched script
func (o *Orchestrator) verifyStage(ctx context.Context, id string, draft *model.Draft, ledgers []model.EvidenceLedger) *model.Verification {
	o.tasks.UpdateStage(id, model.StageVerifying, "verifying claims", model.SeverityInfo)

	verification := o.verifier.Verify(ctx, draft, ledgers)
	if verification.Degraded {
		o.tasks.UpdateStage(id, model.StageVerifying, "verification degraded", model.SeverityWarning)
	}
	return verification
}

// exportStage writes artifacts to disk and assembles the result. Export
// trouble is logged but does not fail an otherwise finished task.
func (o *Orchestrator) exportStage(id string, params model.Params, plan *model.Outline, verification *model.Verification, audit *model.AuditReport) *model.Result {
	o.tasks.UpdateStage(id, model.StageExporting, "exporting artifacts", model.SeverityInfo)

	result := &model.Result{
		TaskID:       id,
		EpisodeTitle: plan.EpisodeTitle,
		ScriptText:   verification.PatchedScript,
		Verdict:      verification.Verdict,
		IssueCount:   len(verification.Issues),
		WordCount:    countWords(verification.PatchedScript),
	}

	path, err := o.exporter.Export(id, result, audit)
	if err != nil {
		o.log.Warn("artifact export failed", "task", id, "error", err)
	} else {
		result.ScriptPath = path
	}
	return result
}
