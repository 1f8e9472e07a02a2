package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/diillson/aws-cur-sync/internal/domain/costreport"
	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

// epochStart é o limite inferior da busca por entidades antigas.
const epochStart = "1970-01-01T00:00:00Z"

// SyncOptions holds everything a single run needs.
type SyncOptions struct {
	Bucket           string
	Prefix           string
	Suffix           string
	LastModifiedDays int

	Workers      int
	MonthsToKeep int

	Build              costreport.BuildOptions
	AccountRelation    string
	SyncCloudResources bool
	Reconcile          bool

	DryRun     bool
	SkipDelete bool

	ReportName  string
	ReportTypes []string
	OutputDir   string
}

// NewSyncOptions merges the resolved configuration with the run flags.
func NewSyncOptions(cfg *types.Config, args *types.CLIArgs) SyncOptions {
	opts := SyncOptions{
		Bucket:           cfg.AWSBucketName,
		Prefix:           cfg.AWSReportPrefix,
		Suffix:           cfg.AWSReportSuffix,
		LastModifiedDays: cfg.AWSLastModifiedDays,
		Workers:          cfg.PortMaxWorkers,
		MonthsToKeep:     cfg.PortMonthsToKeep,
		Build: costreport.BuildOptions{
			Blueprint:         cfg.PortBlueprint,
			ResourceBlueprint: cfg.PortResourceBlueprint,
			TagColumns:        cfg.TagColumns,
		},
		AccountRelation:    cfg.PortAccountRelation,
		SyncCloudResources: cfg.SyncCloudResources,
		Reconcile:          cfg.SyncReconcile,
	}
	if opts.Build.TagColumns == nil {
		opts.Build.TagColumns = costreport.DefaultTagColumns
	}
	if args != nil {
		opts.DryRun = args.DryRun
		opts.SkipDelete = args.SkipDelete
		opts.ReportName = args.ReportName
		opts.ReportTypes = args.ReportType
		opts.OutputDir = args.Dir
	}
	return opts
}

// SyncUseCase handles the report to catalog synchronization.
type SyncUseCase struct {
	storage    repository.StorageRepository
	catalog    repository.CatalogRepository
	awsRepo    repository.AWSRepository
	exportRepo repository.ExportRepository
	metrics    repository.MetricsRecorder
	console    types.ConsoleInterface

	now      func() time.Time
	newRunID func() string
}

// NewSyncUseCase creates a new sync use case.
func NewSyncUseCase(
	storage repository.StorageRepository,
	catalog repository.CatalogRepository,
	awsRepo repository.AWSRepository,
	exportRepo repository.ExportRepository,
	metrics repository.MetricsRecorder,
	console types.ConsoleInterface,
) *SyncUseCase {
	return &SyncUseCase{
		storage:    storage,
		catalog:    catalog,
		awsRepo:    awsRepo,
		exportRepo: exportRepo,
		metrics:    metrics,
		console:    console,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// WithRunID fixes the run id, so that the console and the summary share it.
func (uc *SyncUseCase) WithRunID(runID string) *SyncUseCase {
	uc.newRunID = func() string { return runID }
	return uc
}

// Run executes one full sync: report files are aggregated and upserted, then
// entities older than the retention window are deleted. A fatal error stops
// the run; failed catalog calls only mark it incomplete.
func (uc *SyncUseCase) Run(ctx context.Context, opts SyncOptions) (entity.SyncSummary, error) {
	summary := entity.SyncSummary{
		RunID:     uc.newRunID(),
		StartedAt: uc.now().UTC(),
		DryRun:    opts.DryRun,
	}
	if opts.DryRun {
		uc.console.LogWarning("Dry run: no catalog entity will be created or deleted")
	}

	err := uc.sync(ctx, opts, &summary)

	summary.FinishedAt = uc.now().UTC()
	uc.displaySummary(summary)
	uc.exportSummary(summary, opts)
	if mErr := uc.metrics.RunFinished(summary); mErr != nil {
		uc.console.LogWarning("%s", mErr)
	}

	if err != nil {
		return summary, err
	}
	if summary.Failures() > 0 {
		return summary, fmt.Errorf("%w: %d cost entity upserts, %d resource upserts and %d deletes failed",
			types.ErrSyncIncomplete, summary.EntitiesFailed, summary.ResourcesFailed, summary.DeleteFailed)
	}
	uc.console.LogSuccess("Sync %s finished", summary.RunID)
	return summary, nil
}

func (uc *SyncUseCase) sync(ctx context.Context, opts SyncOptions, summary *entity.SyncSummary) error {
	if uc.awsRepo != nil {
		accountID, err := uc.awsRepo.GetAccountID(ctx)
		if err != nil {
			uc.console.LogWarning("Could not resolve the AWS account: %s", err)
		} else {
			summary.AccountID = accountID
			uc.console.LogInfo("Syncing cost reports of account %s", accountID)
		}
	}

	status := uc.console.Status(fmt.Sprintf("Listing report files in s3://%s/%s...", opts.Bucket, opts.Prefix))
	files, err := uc.storage.ListReportFiles(ctx, repository.ListOptions{
		Bucket:        opts.Bucket,
		Prefix:        opts.Prefix,
		Suffix:        opts.Suffix,
		ModifiedSince: uc.now().AddDate(0, 0, -opts.LastModifiedDays),
	})
	status.Stop()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		uc.console.LogWarning("No report file modified in the last %d day(s) under s3://%s/%s",
			opts.LastModifiedDays, opts.Bucket, opts.Prefix)
	}

	for _, file := range files {
		uc.console.LogInfo("Processing %s (%d bytes, modified %s)", file.Key, file.Size, file.LastModified.Format(time.RFC3339))
		fileSummary, err := uc.processFile(ctx, file, opts, summary)
		if err != nil {
			return err
		}
		summary.Files = append(summary.Files, fileSummary)
		uc.metrics.FileProcessed(fileSummary)
	}

	if opts.Reconcile {
		uc.reconcile(ctx, summary)
	}

	if opts.SkipDelete {
		uc.console.LogInfo("Skipping deletion of stale entities")
		return nil
	}
	return uc.deleteStale(ctx, opts, summary)
}

// processFile aggregates one report and upserts its entities. A build error
// stops submission; the calls already in flight finish before it is returned.
func (uc *SyncUseCase) processFile(ctx context.Context, file entity.ReportFile, opts SyncOptions, summary *entity.SyncSummary) (entity.FileSummary, error) {
	agg := costreport.NewAggregator()
	if err := agg.Consume(uc.storage.ReadReport(ctx, opts.Bucket, file)); err != nil {
		return entity.FileSummary{}, fmt.Errorf("failed to read report %s: %w", file.Key, err)
	}
	report := agg.Report()

	fileSummary := entity.FileSummary{
		Key:            file.Key,
		LinesRead:      agg.Read(),
		LinesDropped:   agg.Dropped(),
		Groups:         report.Len(),
		BilledByPeriod: map[string]float64{},
	}
	if fileSummary.LinesDropped > 0 {
		uc.console.LogWarning("%s: %d line item(s) without any key column were dropped", file.Key, fileSummary.LinesDropped)
	}

	pool := newCatalogPool(opts.Workers)
	progress := uc.console.ProgressWithTotal(report.Len())

	var buildErr error
	for costEntity, err := range costreport.BuildCostEntities(report, opts.Build) {
		if err != nil {
			buildErr = fmt.Errorf("%s: %w", file.Key, err)
			break
		}
		fileSummary.Totals.Add(costEntity.Totals)
		fileSummary.BilledByPeriod[costEntity.BillStartDate] += costEntity.Totals.Unblended

		if opts.DryRun {
			progress.Increment()
			continue
		}
		catalogEntity := costEntity.ToCatalog()
		pool.submit(ctx, repository.OpUpsertCost, func(ctx context.Context) error {
			return uc.catalog.UpsertEntity(ctx, catalogEntity)
		}, func(err error) {
			uc.catalogDone(repository.OpUpsertCost, catalogEntity.Identifier, err)
			progress.Increment()
		})
	}

	if buildErr == nil && opts.SyncCloudResources {
		for resource := range costreport.BuildCloudResources(report, opts.Build) {
			if opts.DryRun {
				continue
			}
			catalogEntity := resource.ToCatalog(opts.AccountRelation)
			pool.submit(ctx, repository.OpUpsertResource, func(ctx context.Context) error {
				return uc.catalog.UpsertEntity(ctx, catalogEntity)
			}, func(err error) {
				uc.catalogDone(repository.OpUpsertResource, catalogEntity.Identifier, err)
			})
		}
	}

	pool.wait()
	progress.Stop()

	summary.EntitiesUpserted += pool.succeeded(repository.OpUpsertCost)
	summary.EntitiesFailed += pool.failed(repository.OpUpsertCost)
	summary.ResourcesUpserted += pool.succeeded(repository.OpUpsertResource)
	summary.ResourcesFailed += pool.failed(repository.OpUpsertResource)

	if buildErr != nil {
		return fileSummary, buildErr
	}
	if opts.DryRun {
		uc.console.LogInfo("%s: %d cost entities would be upserted", file.Key, report.Len())
	}
	return fileSummary, nil
}

// reconcile compares the report totals with Cost Explorer per billing period.
// Failures are reported but never fail the run.
func (uc *SyncUseCase) reconcile(ctx context.Context, summary *entity.SyncSummary) {
	if uc.awsRepo == nil {
		return
	}

	byPeriod := map[string]float64{}
	for _, f := range summary.Files {
		for period, cost := range f.BilledByPeriod {
			byPeriod[period] += cost
		}
	}

	for _, period := range slices.Sorted(maps.Keys(byPeriod)) {
		start, err := parseBillingDate(period)
		if err != nil {
			uc.console.LogWarning("Skipping reconciliation of period %q: %s", period, err)
			continue
		}
		billed, err := uc.awsRepo.GetBilledCost(ctx, start, start.AddDate(0, 1, 0))
		if err != nil {
			uc.console.LogWarning("Skipping reconciliation of period %s: %s", period, err)
			continue
		}

		rec := entity.PeriodReconciliation{
			BillStartDate: period,
			ReportCost:    byPeriod[period],
			BilledCost:    billed,
			Drift:         byPeriod[period] - billed,
		}
		summary.Reconciliation = append(summary.Reconciliation, rec)
		uc.console.LogInfo("Period %s: report $%.2f, Cost Explorer $%.2f, drift $%.2f",
			period, rec.ReportCost, rec.BilledCost, rec.Drift)
	}
}

// deleteStale removes the cost entities billed before the retention cutoff.
func (uc *SyncUseCase) deleteStale(ctx context.Context, opts SyncOptions, summary *entity.SyncSummary) error {
	cutoff := RetentionCutoff(uc.now(), opts.MonthsToKeep)
	summary.RetentionCutoff = cutoff

	found, err := uc.catalog.SearchEntities(ctx, StaleQuery(opts.Build.Blueprint, cutoff))
	if err != nil {
		return fmt.Errorf("failed to search entities older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	var stale []entity.CatalogEntity
	for _, e := range found {
		if !isStale(e, cutoff) {
			continue
		}
		if e.Blueprint == "" {
			e.Blueprint = opts.Build.Blueprint
		}
		stale = append(stale, e)
	}
	summary.StaleFound = len(stale)
	uc.console.LogInfo("Found %d entities billed before %s", len(stale), cutoff.Format(time.RFC3339))

	if opts.DryRun || len(stale) == 0 {
		return nil
	}

	pool := newCatalogPool(opts.Workers)
	for _, e := range stale {
		pool.submit(ctx, repository.OpDelete, func(ctx context.Context) error {
			return uc.catalog.DeleteEntity(ctx, e)
		}, func(err error) {
			uc.catalogDone(repository.OpDelete, e.Identifier, err)
		})
	}
	pool.wait()

	summary.Deleted += pool.succeeded(repository.OpDelete)
	summary.DeleteFailed += pool.failed(repository.OpDelete)
	return nil
}

func (uc *SyncUseCase) catalogDone(kind, identifier string, err error) {
	uc.metrics.CatalogOperation(kind, err)
	if err != nil {
		uc.console.LogError("%s %s: %s", kind, identifier, err)
	}
}

// RetentionCutoff returns now minus the given months, clamped to the last day
// of the target month, minus one more day.
func RetentionCutoff(now time.Time, months int) time.Time {
	now = now.UTC()
	year, month, day := now.Date()

	target := time.Date(year, month-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}

	shifted := time.Date(target.Year(), target.Month(), day,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return shifted.AddDate(0, 0, -1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StaleQuery selects the entities of blueprint billed up to cutoff.
func StaleQuery(blueprint string, cutoff time.Time) entity.CatalogQuery {
	return entity.CatalogQuery{
		Combinator: "and",
		Rules: []entity.CatalogRule{
			{Property: "$blueprint", Operator: "=", Value: blueprint},
			{
				Property: "billStartDate",
				Operator: "between",
				Value:    entity.DateRange{From: epochStart, To: cutoff.UTC().Format(time.RFC3339)},
			},
		},
	}
}

// isStale reports whether the entity was billed strictly before cutoff.
// Entities without a readable billing date are kept.
func isStale(e entity.CatalogEntity, cutoff time.Time) bool {
	raw, _ := e.Properties["billStartDate"].(string)
	start, err := parseBillingDate(raw)
	if err != nil {
		return false
	}
	return start.Before(cutoff)
}

func parseBillingDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// catalogPool runs catalog calls on a bounded number of goroutines. Calls
// never fail the group, so one failure does not cancel its siblings.
type catalogPool struct {
	group errgroup.Group

	mu      sync.Mutex
	success map[string]int
	failure map[string]int
}

func newCatalogPool(width int) *catalogPool {
	p := &catalogPool{success: map[string]int{}, failure: map[string]int{}}
	p.group.SetLimit(max(width, 1))
	return p
}

// submit blocks while the pool is full.
func (p *catalogPool) submit(ctx context.Context, kind string, call func(context.Context) error, done func(error)) {
	p.group.Go(func() error {
		err := call(ctx)

		p.mu.Lock()
		if err != nil {
			p.failure[kind]++
		} else {
			p.success[kind]++
		}
		p.mu.Unlock()

		done(err)
		return nil
	})
}

func (p *catalogPool) wait() {
	_ = p.group.Wait()
}

func (p *catalogPool) succeeded(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.success[kind]
}

func (p *catalogPool) failed(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failure[kind]
}

func (uc *SyncUseCase) displaySummary(summary entity.SyncSummary) {
	files := uc.console.CreateTable()
	for _, col := range []string{"File", "Lines Read", "Lines Dropped", "Groups", "Unblended Cost", "Amortized Cost"} {
		files.AddColumn(col)
	}
	for _, f := range summary.Files {
		files.AddRow(f.Key, f.LinesRead, f.LinesDropped, f.Groups,
			fmt.Sprintf("$%.2f", f.Totals.Unblended), fmt.Sprintf("$%.2f", f.Totals.Amortized))
	}
	if len(summary.Files) > 0 {
		uc.console.DisplayTable("Report Files", files)
	}

	catalog := uc.console.CreateTable()
	catalog.AddColumn("Operation")
	catalog.AddColumn("Succeeded")
	catalog.AddColumn("Failed")
	catalog.AddRow("Upsert cost entities", summary.EntitiesUpserted, summary.EntitiesFailed)
	catalog.AddRow("Upsert cloud resources", summary.ResourcesUpserted, summary.ResourcesFailed)
	catalog.AddRow("Delete stale entities", summary.Deleted, summary.DeleteFailed)
	uc.console.DisplayTable(fmt.Sprintf("Catalog Sync %s", summary.RunID), catalog)
}

func (uc *SyncUseCase) exportSummary(summary entity.SyncSummary, opts SyncOptions) {
	if opts.ReportName == "" || uc.exportRepo == nil {
		return
	}
	for _, reportType := range opts.ReportTypes {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportSummaryToCSV(summary, opts.ReportName, opts.OutputDir)
		case "json":
			path, err = uc.exportRepo.ExportSummaryToJSON(summary, opts.ReportName, opts.OutputDir)
		case "pdf":
			path, err = uc.exportRepo.ExportSummaryToPDF(summary, opts.ReportName, opts.OutputDir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export summary to %s: %s", reportType, err)
			continue
		}
		uc.console.LogSuccess("Successfully exported summary to %s: %s", reportType, path)
	}
}
