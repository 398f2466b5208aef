// Package assessment runs one consolidation pass: responses are resolved,
// normalized, aggregated, benchmarked and merged with upstream analysis into an
// insights model that must pass contract validation before it is released.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/common"
	"github.com/ternarybob/bizhealth/internal/interfaces"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/services/benchmark"
	"github.com/ternarybob/bizhealth/internal/services/insights"
	"github.com/ternarybob/bizhealth/internal/services/quality"
	"github.com/ternarybob/bizhealth/internal/services/scoring"
	"github.com/ternarybob/bizhealth/internal/services/taxonomy"
	"github.com/ternarybob/bizhealth/internal/services/validation"
	"golang.org/x/sync/errgroup"
)

// Input is everything one run consumes
type Input struct {
	Profile      models.CompanyProfile    `json:"profile" yaml:"profile"`
	Responses    []models.RawResponse     `json:"responses" yaml:"responses"`
	Analyses     []models.AnalysisPayload `json:"analyses" yaml:"analyses"`
	Trajectory   models.Trajectory        `json:"trajectory,omitempty" yaml:"trajectory"`
	PriorOverall *float64                 `json:"prior_overall,omitempty" yaml:"prior_overall"`
}

// Result is the outcome of one run. IDM is nil unless the model passed the
// contract and the audit did not fail; Draft is kept as a diagnostic.
type Result struct {
	RunID      string
	Status     models.AuditStatus
	IDM        *models.InsightsModel
	Draft      *models.InsightsModel
	Audit      models.QualityAudit
	Violations []models.Violation
}

// Engine holds the immutable, shared parts of the pipeline. Each Run gets its
// own tracker and draft, so concurrent runs do not share mutable state.
type Engine struct {
	logger     arbor.ILogger
	table      *taxonomy.Table
	resolver   *taxonomy.Resolver
	normalizer *scoring.Normalizer
	aggregator *scoring.Aggregator
	comparator *benchmark.Comparator
	extractor  *insights.Extractor
	roadmap    *insights.RoadmapBuilder
	contract   *validation.ContractValidator
	policy     quality.Policy
	quickWins  insights.QuickWinPolicy
	workers    int
	provider   interfaces.AnalysisProvider
}

// NewEngine wires the pipeline from configuration. A nil benchmark table runs
// without peer comparison.
func NewEngine(logger arbor.ILogger, cfg *common.Config, framework *models.Framework, benchmarks *benchmark.Table) (*Engine, error) {
	table, err := taxonomy.NewTable(framework)
	if err != nil {
		return nil, fmt.Errorf("failed to build taxonomy table: %w", err)
	}

	normalizer, err := scoring.NewNormalizer(framework.Rules, scoring.NormalizerOptions{
		PercentageClampTolerance: cfg.Scoring.PercentageClampTolerance,
		ResponseTypes:            cfg.Scoring.ResponseTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}

	roadmap, err := insights.NewRoadmapBuilder(phasesFromConfig(cfg.Roadmap.Phases))
	if err != nil {
		return nil, fmt.Errorf("invalid roadmap phases: %w", err)
	}

	workers := cfg.Engine.Workers
	if workers <= 0 {
		workers = 1
	}

	resolver := taxonomy.NewResolver(table, logger)
	return &Engine{
		logger:     logger,
		table:      table,
		resolver:   resolver,
		normalizer: normalizer,
		aggregator: scoring.NewAggregator(framework, scoring.AggregatorOptions{
			Bands: scoring.Thresholds{
				Attention:   cfg.Scoring.BandAttention,
				Proficiency: cfg.Scoring.BandProficiency,
				Excellence:  cfg.Scoring.BandExcellence,
			},
			Confidence: scoring.ConfidenceThresholds{
				High:   cfg.Scoring.ConfidenceHigh,
				Medium: cfg.Scoring.ConfidenceMedium,
			},
		}),
		comparator: benchmark.NewComparator(benchmarks),
		extractor:  insights.NewExtractor(resolver, logger),
		roadmap:    roadmap,
		contract:   validation.NewContractValidator(logger),
		policy: quality.Policy{
			MaxCriticalIssues:       cfg.Quality.MaxCriticalIssues,
			MaxWarnings:             cfg.Quality.MaxWarnings,
			CriticalDimensions:      cfg.Quality.CriticalDimensions,
			MinCriticalCompleteness: cfg.Quality.MinCriticalCompleteness,
		},
		quickWins: insights.QuickWinPolicy{
			Impacts: levels(cfg.Insights.QuickWinImpacts),
			Efforts: levels(cfg.Insights.QuickWinEfforts),
			MaxDays: cfg.Insights.QuickWinMaxDays,
		},
		workers: workers,
	}, nil
}

// SetAnalysisProvider attaches a provider consulted after scoring. Its payloads
// are merged after the ones supplied in the run input.
func (e *Engine) SetAnalysisProvider(provider interfaces.AnalysisProvider) {
	e.provider = provider
}

// run carries the per-run state
type run struct {
	id      string
	logger  arbor.ILogger
	tracker *quality.Tracker
}

func (e *Engine) newRun() *run {
	runID := common.NewRunID()
	logger := e.logger.WithCorrelationId(runID)
	return &run{
		id:      runID,
		logger:  logger,
		tracker: quality.NewTracker(runID, e.policy, logger),
	}
}

// terminate records the issue that ends the run
func (r *run) terminate(issue models.Issue) {
	if err := r.tracker.Abort(issue); err != nil {
		r.logger.Warn().Err(err).Str("code", string(issue.Code)).Msg("Terminal issue not recorded")
	}
}

// Run executes one assessment. Configuration defects and contract violations
// are returned as errors together with a populated Result; cancellation
// returns the context error and discards the draft.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	r := e.newRun()
	r.logger.Info().
		Str("company", in.Profile.Name).
		Int("responses", len(in.Responses)).
		Int("workers", e.workers).
		Msg("Assessment run started")

	for _, spec := range e.table.Dimensions() {
		r.tracker.ExpectDimension(spec.Code, len(spec.SubIndicators), spec.ExpectedQuestionCount())
	}

	placed, err := e.place(r, in.Responses)
	if errors.Is(err, quality.ErrAuditFinalized) {
		return nil, err
	}
	if err != nil {
		return e.abort(r, models.IssueUnknownTaxonomyCode, "resolve", err), err
	}
	if err := ctx.Err(); err != nil {
		return e.cancel(r, err), err
	}

	normalized, err := e.normalize(ctx, r, placed)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.cancel(r, ctxErr), ctxErr
		}
		return e.abort(r, models.IssueMissingHandler, "normalize", err), err
	}

	hierarchy, issues := e.aggregator.Aggregate(normalized)
	if err := r.tracker.RecordAll(issues); err != nil {
		return nil, err
	}
	processed := 0
	for _, dim := range hierarchy.Dimensions {
		if err := r.tracker.ObserveDimension(dim); err != nil {
			return nil, err
		}
	}
	for _, ch := range hierarchy.Chapters {
		if ch.Score != nil {
			processed++
		}
	}
	r.tracker.ObserveChapters(len(hierarchy.Chapters), processed)
	if err := ctx.Err(); err != nil {
		return e.cancel(r, err), err
	}

	overallBenchmark, err := e.benchmarkAll(r, in.Profile, hierarchy)
	if err != nil {
		return nil, err
	}

	merged, err := e.analyse(ctx, r, in, hierarchy)
	if errors.Is(err, quality.ErrAuditFinalized) {
		return nil, err
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.cancel(r, ctxErr), ctxErr
		}
		return e.abort(r, models.IssueUnknownTaxonomyCode, "insights", err), err
	}
	quickWins := insights.SelectQuickWins(merged.Recommendations, e.quickWins)
	roadmap, roadmapIssues := e.roadmap.Build(merged.Recommendations)
	if err := r.tracker.RecordAll(roadmapIssues); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return e.cancel(r, err), err
	}

	draft := e.assemble(r, in, hierarchy, overallBenchmark, merged, quickWins, roadmap)
	return e.conclude(r, draft)
}

// placement pairs a response with its catalog position
type placement struct {
	raw    models.RawResponse
	target taxonomy.Placement
}

// place resolves every response's dimension code and finds its catalog slot.
// An unknown code stops the run; answers outside the catalog or filed under
// the wrong dimension are excluded and recorded.
func (e *Engine) place(r *run, responses []models.RawResponse) ([]placement, error) {
	placed := make([]placement, 0, len(responses))
	for _, raw := range responses {
		spec, err := e.resolver.Resolve(raw.DimensionCode)
		if err != nil {
			return nil, &models.ConfigurationDefect{
				Kind:          models.DefectUnknownCode,
				DimensionCode: raw.DimensionCode,
				QuestionID:    raw.QuestionID,
				Err:           err,
			}
		}

		target, ok := e.table.Placement(raw.QuestionID)
		if !ok {
			if err := r.tracker.Record(models.Issue{
				Severity:      models.SeverityWarning,
				Code:          models.IssueQuestionNotInCatalog,
				Stage:         "resolve",
				DimensionCode: spec.Code,
				QuestionID:    raw.QuestionID,
				Message:       fmt.Sprintf("question %s is not in framework %s", raw.QuestionID, e.table.Version()),
			}); err != nil {
				return nil, err
			}
			continue
		}
		if target.DimensionCode != spec.Code {
			if err := r.tracker.Record(models.Issue{
				Severity:      models.SeverityCritical,
				Code:          models.IssueTaxonomyMismatch,
				Stage:         "resolve",
				DimensionCode: spec.Code,
				QuestionID:    raw.QuestionID,
				Message: fmt.Sprintf("question %s filed under %s (%s) belongs to %s",
					raw.QuestionID, raw.DimensionCode, spec.Code, target.DimensionCode),
			}); err != nil {
				return nil, err
			}
			continue
		}
		placed = append(placed, placement{raw: raw, target: target})
	}

	r.logger.Debug().
		Int("received", len(responses)).
		Int("placed", len(placed)).
		Msg("Responses resolved against taxonomy")
	return placed, nil
}

// normalize fans out over a bounded worker group. Each worker writes only its
// own slot; the Wait is the barrier before aggregation.
func (e *Engine) normalize(ctx context.Context, r *run, placed []placement) ([]models.NormalizedResponse, error) {
	out := make([]models.NormalizedResponse, len(placed))
	found := make([]*models.Issue, len(placed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range placed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i], found[i] = e.normalizer.Normalize(placed[i].raw, placed[i].target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		issues  []models.Issue
		missing *models.Issue
	)
	for _, issue := range found {
		if issue == nil {
			continue
		}
		issues = append(issues, *issue)
		if issue.Code == models.IssueMissingHandler && missing == nil {
			missing = issue
		}
	}
	if err := r.tracker.RecordAll(issues); err != nil {
		return nil, err
	}
	if missing != nil {
		return nil, &models.ConfigurationDefect{
			Kind:          models.DefectMissingHandler,
			DimensionCode: missing.DimensionCode,
			QuestionID:    missing.QuestionID,
			Detail:        missing.Message,
		}
	}

	r.logger.Debug().
		Int("normalized", len(out)).
		Int("issues", len(issues)).
		Msg("Responses normalized")
	return out, nil
}

// analyse merges supplied payloads with the provider's. A failing provider is
// recorded and the run continues on the supplied payloads alone.
func (e *Engine) analyse(ctx context.Context, r *run, in Input, h *scoring.Hierarchy) (*insights.Insights, error) {
	payloads := append([]models.AnalysisPayload(nil), in.Analyses...)
	if e.provider != nil {
		extra, err := e.provider.Analyze(ctx, in.Profile, h.Dimensions)
		switch {
		case err == nil:
			payloads = append(payloads, extra...)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			if err := r.tracker.Record(models.Issue{
				Severity: models.SeverityWarning,
				Code:     models.IssueAnalysisUnavailable,
				Stage:    "insights",
				Message:  fmt.Sprintf("analysis provider failed: %v", err),
			}); err != nil {
				return nil, err
			}
		}
	}

	merged, issues, err := e.extractor.Merge(payloads)
	if err != nil {
		return nil, err
	}
	if err := r.tracker.RecordAll(issues); err != nil {
		return nil, err
	}
	return merged, nil
}

// conclude validates the draft and finalizes the audit
func (e *Engine) conclude(r *run, draft *models.InsightsModel) (*Result, error) {
	violations := e.contract.Validate(draft)
	if len(violations) > 0 {
		verr := &models.ContractViolationError{RunID: r.id, Violations: violations}
		r.terminate(models.Issue{
			Severity: models.SeverityCritical,
			Code:     models.IssueContractViolation,
			Stage:    "contract",
			Message:  fmt.Sprintf("insights model failed contract validation at %s", strings.Join(verr.Paths(), ", ")),
		})
		audit := r.tracker.Finalize()
		draft.QualitySummary = qualitySummary(audit, draft.Dimensions)
		return &Result{
			RunID:      r.id,
			Status:     audit.Status,
			Draft:      draft,
			Audit:      audit,
			Violations: violations,
		}, verr
	}

	audit := r.tracker.Finalize()
	draft.QualitySummary = qualitySummary(audit, draft.Dimensions)
	result := &Result{
		RunID:  r.id,
		Status: audit.Status,
		Draft:  draft,
		Audit:  audit,
	}
	if audit.Status != models.AuditFail {
		result.IDM = draft
	}

	r.logger.Info().
		Str("status", string(audit.Status)).
		Bool("delivered", result.IDM != nil).
		Msg("Assessment run completed")
	return result, nil
}

// abort closes a run stopped by a configuration defect
func (e *Engine) abort(r *run, code models.IssueCode, stage string, err error) *Result {
	issue := models.Issue{
		Severity: models.SeverityCritical,
		Code:     code,
		Stage:    stage,
		Message:  err.Error(),
	}
	var defect *models.ConfigurationDefect
	if errors.As(err, &defect) {
		issue.DimensionCode = defect.DimensionCode
		issue.QuestionID = defect.QuestionID
		if defect.Kind == models.DefectMissingHandler {
			// The handler issue itself was recorded at the normalization barrier
			issue.Severity = models.SeverityInfo
			issue.Code = models.IssueRunAborted
		}
	}
	r.terminate(issue)
	audit := r.tracker.Finalize()
	r.logger.Error().Err(err).Str("stage", stage).Msg("Assessment run aborted")
	return &Result{RunID: r.id, Status: audit.Status, Audit: audit}
}

// cancel closes a run whose context ended; nothing partial is kept
func (e *Engine) cancel(r *run, err error) *Result {
	r.terminate(models.Issue{
		Severity: models.SeverityCritical,
		Code:     models.IssueRunCancelled,
		Stage:    "run",
		Message:  err.Error(),
	})
	audit := r.tracker.Finalize()
	r.logger.Warn().Err(err).Msg("Assessment run cancelled")
	return &Result{RunID: r.id, Status: audit.Status, Audit: audit}
}

func phasesFromConfig(configured []common.RoadmapPhaseConfig) []insights.Phase {
	if len(configured) == 0 {
		return insights.DefaultPhases()
	}
	phases := make([]insights.Phase, len(configured))
	for i, p := range configured {
		phases[i] = insights.Phase{Key: p.Key, Label: p.Label, MinDays: p.MinDays}
		if p.MaxDays == 0 && i == len(configured)-1 {
			continue
		}
		maxDays := p.MaxDays
		phases[i].MaxDays = &maxDays
	}
	return phases
}

func levels(labels []string) []models.Level {
	out := make([]models.Level, 0, len(labels))
	for _, l := range labels {
		out = append(out, models.ParseLevel(l))
	}
	return out
}
