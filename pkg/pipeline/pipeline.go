// Package pipeline runs one room-creation job end to end: request
// validation, scenario generation, scenario validation, 3D model fan-out,
// script generation, result assembly. The pipeline owns the job's terminal
// state — exactly one store write per job, COMPLETED or FAILED.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/models"
	"github.com/eroom-dev/eroom/pkg/store"
	"github.com/eroom-dev/eroom/pkg/validate"
)

// LLMGateway is the subset of the LLM client the pipeline calls.
type LLMGateway interface {
	GenerateScenario(ctx context.Context, systemPrompt string, payload any) (*models.Scenario, error)
	GenerateScripts(ctx context.Context, systemPrompt string, payload any) (models.ScriptBundle, error)
}

// MeshGateway is the subset of the mesh client the pipeline calls.
type MeshGateway interface {
	SubmitModel(ctx context.Context, prompt, objectName string, keyIndex int) string
}

// Pipeline executes jobs. One instance is shared by all workers; it holds
// no per-job state.
type Pipeline struct {
	prompts config.PromptsConfig
	llm     LLMGateway
	mesh    MeshGateway
	store   *store.Store
}

// New creates a pipeline over the given gateways and result store.
func New(prompts config.PromptsConfig, llm LLMGateway, mesh MeshGateway, st *store.Store) *Pipeline {
	return &Pipeline{
		prompts: prompts,
		llm:     llm,
		mesh:    mesh,
		store:   st,
	}
}

// scenarioPayload is the user message for the scenario call: the request in
// canonical snake_case form.
type scenarioPayload struct {
	UserID          string                  `json:"uuid"`
	Theme           string                  `json:"theme"`
	Keywords        []string                `json:"keywords"`
	Difficulty      string                  `json:"difficulty"`
	RoomPrefab      string                  `json:"room_prefab"`
	ExistingObjects []models.ExistingObject `json:"existing_objects"`
	FreeModeling    bool                    `json:"is_free_modeling"`
}

// Execute runs the job to a terminal state. The returned error mirrors what
// was stored in the failure document; callers use it for logging only.
func (p *Pipeline) Execute(ctx context.Context, jobID string, req *models.CreationRequest) (err error) {
	log := slog.With("job_id", jobID, "user_id", req.UserID)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
			log.Error("Pipeline panicked", "panic", r)
			p.fail(jobID, req.UserID, err)
		}
	}()

	if err = p.run(ctx, log, jobID, req); err != nil {
		log.Warn("Job failed", "error", err)
		p.fail(jobID, req.UserID, err)
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, jobID string, req *models.CreationRequest) error {
	// Phase 1: request validation.
	if res := validate.CheckRequest(req); !res.OK() {
		return fmt.Errorf("invalid request: %w", res.Err())
	}

	difficulty := req.NormalizedDifficulty()

	// Phase 2: scenario generation.
	payload := scenarioPayload{
		UserID:          req.UserID,
		Theme:           req.Theme,
		Keywords:        req.Keywords,
		Difficulty:      difficulty,
		RoomPrefab:      req.RoomPrefab,
		ExistingObjects: req.ExistingObjects,
		FreeModeling:    req.FreeModeling,
	}
	scenario, err := p.llm.GenerateScenario(ctx, p.prompts.Scenario, payload)
	if err != nil {
		return fmt.Errorf("scenario generation: %w", err)
	}

	// Phase 3: scenario validation.
	res := validate.CheckScenario(scenario, req.FreeModeling)
	for _, w := range res.Warnings {
		log.Warn("Scenario warning", "warning", w)
	}
	if !res.OK() {
		return fmt.Errorf("invalid scenario: %w", res.Err())
	}

	// Phase 4: 3D model fan-out. Sentinel tracking ids are kept verbatim;
	// a partially modeled room is still a room.
	handles := p.submitModels(ctx, log, scenario, req.FreeModeling)

	// Phase 5: script generation, fed the verbatim scenario JSON.
	scripts, err := p.llm.GenerateScripts(ctx, p.prompts.UnifiedScripts, scenario.Raw)
	if err != nil {
		return fmt.Errorf("script generation: %w", err)
	}

	// Phase 6: assemble and store the one terminal write.
	doc := models.NewCompletedDocument(jobID, req.UserID, scenario.Raw, scripts, handles)
	if err := p.store.Complete(jobID, doc); err != nil {
		return fmt.Errorf("storing result: %w", err)
	}

	log.Info("Job completed",
		"objects", len(scenario.Objects),
		"models", len(handles),
		"scripts", len(scripts))
	return nil
}

// submitModels submits one generation per interactive object, in document
// order. The ordinal doubles as the key-rotation index.
func (p *Pipeline) submitModels(ctx context.Context, log *slog.Logger, scenario *models.Scenario, freeModeling bool) []models.ModelHandle {
	interactive := scenario.InteractiveObjects()
	handles := make([]models.ModelHandle, 0, len(interactive))
	for i, obj := range interactive {
		trackingID := p.mesh.SubmitModel(ctx, obj.VisualPrompt(freeModeling), obj.Name, i)
		handles = append(handles, models.ModelHandle{
			ObjectName: obj.Name,
			TrackingID: trackingID,
		})
	}
	log.Info("Mesh fan-out complete", "submitted", len(handles))
	return handles
}

// fail records the terminal FAILED document. A store error here means the
// job already reached a terminal state; log and move on.
func (p *Pipeline) fail(jobID, userID string, cause error) {
	doc := models.NewFailedDocument(jobID, userID, cause.Error())
	if err := p.store.Fail(jobID, doc); err != nil {
		slog.Error("Could not store failure document", "job_id", jobID, "error", err)
	}
}
