package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/api"
	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/mcp"
	"github.com/symptom-insight-server/internal/service"
	"github.com/symptom-insight-server/internal/symptom"
	"github.com/symptom-insight-server/pkg/external"
)

// App holds every resolver built from one configuration.
type App struct {
	Config      *domain.Config
	Cache       *cache.Cache
	Breakers    *external.BreakerRegistry
	Vocabulary  *symptom.Vocabulary
	Diagnosis   *service.DiagnosisResolver
	Medications *service.MedicationResolver
	Insights    *service.InsightGenerator
	Assets      *service.AssetResolver
	HealthData  *service.CombinedResolver

	sweeper *cache.Sweeper
	logger  *logrus.Logger
}

// New opens the cache, builds the remote clients and wires the resolvers.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	vocabulary, labels, classifier, err := LoadClassifier(cfg.Classifier, logger)
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Cache:      c,
		Breakers:   external.NewBreakerRegistry(),
		Vocabulary: vocabulary,
		logger:     logger,
	}

	diagnosisClient := external.NewDiagnosisClient(cfg.ExternalAPI.Diagnosis, logger)
	a.Breakers.Register(diagnosisClient.Name(), diagnosisClient.Breaker())

	drugLabelClient := external.NewDrugLabelClient(cfg.ExternalAPI.DrugLabel, logger)
	a.Breakers.Register(drugLabelClient.Name(), drugLabelClient.Breaker())

	var textClient external.TextGenerator
	if cfg.ExternalAPI.TextGeneration.APIKey != "" {
		client := external.NewTextClient(cfg.ExternalAPI.TextGeneration, logger)
		a.Breakers.Register(client.Name(), client.Breaker())
		textClient = client
	} else {
		logger.Warn("No text generation API key configured, insights will use the rule-based fallback")
	}

	var imageClient external.ImageGenerator
	if cfg.Assets.GenerationEnabled && cfg.ExternalAPI.ImageGeneration.APIKey != "" {
		client := external.NewImageClient(cfg.ExternalAPI.ImageGeneration, logger)
		a.Breakers.Register(client.Name(), client.Breaker())
		imageClient = client
	}

	imageCache := c.WithTTL(service.ImageNamespace, cfg.Cache.ImageTTL)

	a.Diagnosis = service.NewDiagnosisResolver(vocabulary, labels, classifier, diagnosisClient, c, logger)
	a.Medications = service.NewMedicationResolver(drugLabelClient, c, logger)
	a.Insights = service.NewInsightGenerator(textClient, c, logger)
	a.Assets = service.NewAssetResolver(cfg.Assets, imageClient, imageCache, vocabulary, logger)
	a.HealthData = service.NewCombinedResolver(a.Diagnosis, a.Medications, a.Insights, logger)

	return a, nil
}

// LoadClassifier reads the local model when one is configured. Without a
// model path the local diagnosis path is disabled and the built-in tables are
// used. A model's own vocabulary and labels replace the built-in ones.
func LoadClassifier(cfg domain.ClassifierConfig, logger *logrus.Logger) (*symptom.Vocabulary, []string, service.Classifier, error) {
	vocabulary := symptom.DefaultVocabulary()
	labels := symptom.DefaultLabels()

	if cfg.ModelPath == "" {
		logger.Info("No classifier model configured, local diagnosis disabled")
		return vocabulary, labels, nil, nil
	}

	model, err := service.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		return nil, nil, nil, err
	}
	classifier, err := service.NewLinearClassifierFromModel(model)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid classifier model %s: %w", cfg.ModelPath, err)
	}

	if len(model.Vocabulary) > 0 {
		vocabulary = symptom.NewVocabulary(model.Vocabulary)
	}
	if len(model.Labels) > 0 {
		labels = model.Labels
	}

	if classifier.Features() != vocabulary.Len() {
		return nil, nil, nil, fmt.Errorf("classifier expects %d features but the vocabulary has %d symptoms",
			classifier.Features(), vocabulary.Len())
	}
	if classifier.Labels() > len(labels) {
		logger.WithFields(logrus.Fields{
			"model_labels": classifier.Labels(),
			"label_table":  len(labels),
		}).Warn("Classifier predicts labels missing from the label table")
	}

	logger.WithFields(logrus.Fields{
		"model_path": cfg.ModelPath,
		"features":   classifier.Features(),
		"labels":     classifier.Labels(),
	}).Info("Classifier loaded")

	return vocabulary, labels, classifier, nil
}

// StartSweeper schedules the expiry sweep for backends that support it.
func (a *App) StartSweeper() error {
	interval := a.Config.Cache.SweepInterval
	if interval <= 0 {
		return nil
	}
	sweeper := cache.NewSweeper(a.Cache.Store(), cache.MaxTTL(a.Config.Cache), a.logger)
	if sweeper == nil {
		a.logger.WithField("backend", a.Config.Cache.Backend).Debug("Cache backend expires entries itself, sweeper disabled")
		return nil
	}
	if err := sweeper.Start(interval); err != nil {
		return err
	}
	a.sweeper = sweeper
	return nil
}

// APIDependencies returns the operations served over HTTP.
func (a *App) APIDependencies() api.Dependencies {
	return api.Dependencies{
		HealthData:  a.HealthData,
		Diagnosis:   a.Diagnosis,
		Medications: a.Medications,
		Images:      a.Assets,
		Related:     a.Vocabulary,
		Cache:       a.Cache,
		Services:    a.Breakers,
	}
}

// MCPDependencies returns the operations exposed as MCP tools.
func (a *App) MCPDependencies() mcp.Dependencies {
	return mcp.Dependencies{
		HealthData:  a.HealthData,
		Diagnosis:   a.Diagnosis,
		Medications: a.Medications,
		Images:      a.Assets,
		Related:     a.Vocabulary,
		Cache:       a.Cache,
	}
}

// Close stops the sweeper and releases the cache backend.
func (a *App) Close() error {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	return a.Cache.Close()
}
