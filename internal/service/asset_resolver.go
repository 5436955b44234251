package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/image/draw"

	"github.com/symptom-insight-server/internal/cache"
	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/metrics"
	"github.com/symptom-insight-server/internal/symptom"
	"github.com/symptom-insight-server/pkg/external"
)

const (
	// DefaultAssetSize is the edge length of images when none is requested.
	DefaultAssetSize = 300
	// DefaultGalleryCount is the number of images returned by a gallery page.
	DefaultGalleryCount = 8
	// ImageNamespace identifies image entries in the cache key space.
	ImageNamespace = "symptom-image"

	relatedPerToken       = 5
	defaultMaxConcurrency = 4
)

const imageGenerationPrompt = `Create a realistic medical illustration of the symptom: %s.

Description: %s

The image should be:
- Medically accurate and educational
- Clear and focused on the symptom
- Suitable for a healthcare application
- Professional in appearance
- Appropriate for general audience (not graphic or disturbing)

Please generate a detailed, anatomically correct illustration that would be helpful for patients to identify this symptom.`

var staticExtensions = []string{".jpg", ".jpeg", ".png"}

// defaultGallery is shown when no symptoms are given: one respiratory, one
// skin, two pain, one digestive and three general symptoms.
var defaultGallery = []string{
	"cough", "skin_rash", "headache", "joint_pain", "nausea", "high_fever", "fatigue", "chills",
}

type backfillCategory struct {
	name     string
	terms    []string
	symptoms []string
}

// backfillCategories assign each input symptom to its first matching
// category; the symptoms of every assigned category then pad the gallery.
var backfillCategories = []backfillCategory{
	{name: "respiratory", terms: []string{"cough", "breath", "sneez", "throat", "phlegm"}, symptoms: []string{"cough", "breathlessness", "throat_irritation", "phlegm"}},
	{name: "skin", terms: []string{"skin", "rash", "itch", "patch"}, symptoms: []string{"skin_rash", "itching", "nodal_skin_eruptions"}},
	{name: "pain", terms: []string{"pain", "ache", "sore"}, symptoms: []string{"headache", "joint_pain", "back_pain", "stomach_pain"}},
	{name: "digestive", terms: []string{"stomach", "nausea", "vomit", "diarr", "digest"}, symptoms: []string{"nausea", "vomiting", "diarrhoea", "indigestion"}},
	{name: "neurological", terms: []string{"dizz", "balance", "vertigo"}, symptoms: []string{"dizziness", "loss_of_balance", "fatigue"}},
	{name: "general", terms: []string{"fever", "chill", "temperature"}, symptoms: []string{"high_fever", "mild_fever", "chills", "dehydration"}},
	{name: "cardiovascular", terms: []string{"heart", "chest", "pulse"}, symptoms: []string{"fast_heart_rate", "chest_pain"}},
	{name: "metabolic", terms: []string{"weight", "sugar", "metabol"}, symptoms: []string{"weight_loss", "weight_gain", "irregular_sugar_level"}},
}

var defaultBackfill = map[string]bool{"general": true, "respiratory": true, "pain": true}

// AssetResolver resolves illustrative images for symptoms through the static
// catalog, the image cache, the image model and finally the local renderer.
type AssetResolver struct {
	staticDir      string
	size           domain.ImageSize
	generator      external.ImageGenerator
	cache          *cache.Cache
	vocabulary     *symptom.Vocabulary
	maxConcurrency int
	logger         *logrus.Logger
}

// NewAssetResolver creates a resolver. The generator is ignored unless
// generation is enabled in config.
func NewAssetResolver(
	config domain.AssetConfig,
	generator external.ImageGenerator,
	c *cache.Cache,
	vocabulary *symptom.Vocabulary,
	logger *logrus.Logger,
) *AssetResolver {
	edge := config.DefaultSize
	if edge <= 0 {
		edge = DefaultAssetSize
	}
	if !config.GenerationEnabled {
		generator = nil
	}
	concurrency := config.MaxConcurrency
	if concurrency <= 0 {
		concurrency = defaultMaxConcurrency
	}
	if vocabulary == nil {
		vocabulary = symptom.DefaultVocabulary()
	}

	return &AssetResolver{
		staticDir:      config.StaticDir,
		size:           domain.ImageSize{Width: edge, Height: edge},
		generator:      generator,
		cache:          c,
		vocabulary:     vocabulary,
		maxConcurrency: concurrency,
		logger:         logger,
	}
}

// Resolve returns an image for symptomKey. The procedural tier always
// succeeds, so the asset always carries an image.
func (r *AssetResolver) Resolve(ctx context.Context, symptomKey string, size domain.ImageSize) domain.SymptomAsset {
	key := displayKey(symptomKey)
	if size.Width <= 0 || size.Height <= 0 {
		size = r.size
	}

	asset := domain.SymptomAsset{
		SymptomKey:  key,
		Symptom:     DisplayName(key),
		Description: Description(key),
	}
	logger := r.logger.WithFields(logrus.Fields{"symptom": key, "width": size.Width, "height": size.Height})

	if uri, err := r.staticImage(key, size); err == nil {
		return r.finish(asset, uri, domain.TierStatic)
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.WithError(err).Debug("Static image unusable, falling through")
	}

	cacheKey := cache.ComputeKey(ImageNamespace, map[string]any{
		"symptom": key,
		"width":   size.Width,
		"height":  size.Height,
	})
	uri, hit, err := cache.Resolve(ctx, r.cache, cacheKey, func(ctx context.Context) (string, bool) {
		return r.generate(ctx, key, logger)
	})
	switch {
	case err != nil:
		logger.WithError(err).Debug("Image cache lookup abandoned")
	case hit && uri != "":
		return r.finish(asset, uri, domain.TierCached)
	case uri != "":
		return r.finish(asset, uri, domain.TierGenerated)
	}

	uri, err = RenderProcedural(key, ImagePrompt(key), size.Width, size.Height)
	if err != nil {
		logger.WithError(err).Error("Procedural render failed")
	}
	return r.finish(asset, uri, domain.TierProcedural)
}

func (r *AssetResolver) finish(asset domain.SymptomAsset, uri string, tier domain.ResolutionTier) domain.SymptomAsset {
	asset.Image = uri
	asset.ResolutionTier = tier
	metrics.AssetResolutions.WithLabelValues(string(tier)).Inc()
	return asset
}

// generate asks the image model for an illustration. An empty result means
// the model is disabled, failed or returned no image.
func (r *AssetResolver) generate(ctx context.Context, key string, logger *logrus.Entry) (string, bool) {
	if r.generator == nil {
		return "", false
	}

	prompt := fmt.Sprintf(imageGenerationPrompt, key, ImagePrompt(key))
	data, found, err := r.generator.GenerateImage(ctx, prompt)
	if err != nil {
		logger.WithField("error", external.Describe(err)).Info("Image generation failed, using procedural image")
		return "", false
	}
	if !found || data.Data == "" {
		logger.Debug("Image model returned no image")
		return "", false
	}

	mimeType := data.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + data.Data, true
}

// staticImage loads, resizes and encodes the catalog image for key. A key
// with no catalog image yields an os.ErrNotExist error.
func (r *AssetResolver) staticImage(key string, size domain.ImageSize) (string, error) {
	path, err := r.staticPath(key)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// staticPath finds the catalog file for key: the explicit filename table
// first, then any image whose name matches ignoring case, spaces and
// underscores.
func (r *AssetResolver) staticPath(key string) (string, error) {
	if r.staticDir == "" {
		return "", os.ErrNotExist
	}

	if name, ok := staticFilenames[symptom.Canonical(key)]; ok {
		path := filepath.Join(r.staticDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	entries, err := os.ReadDir(r.staticDir)
	if err != nil {
		return "", err
	}
	want := foldName(key)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !hasExtension(ext) {
			continue
		}
		if foldName(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))) == want {
			return filepath.Join(r.staticDir, entry.Name()), nil
		}
	}
	return "", os.ErrNotExist
}

func hasExtension(ext string) bool {
	for _, e := range staticExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func foldName(name string) string {
	return strings.NewReplacer(" ", "", "_", "").Replace(strings.ToLower(name))
}

// ResolveMany resolves up to count symptoms concurrently, preserving order.
// Short lists are padded with symptoms from the categories of the inputs; an
// empty list yields a fixed, diverse default set.
func (r *AssetResolver) ResolveMany(ctx context.Context, symptomKeys []string, count int) []domain.SymptomAsset {
	if count <= 0 {
		return []domain.SymptomAsset{}
	}

	keys := r.selectKeys(symptomKeys, count)
	assets := make([]domain.SymptomAsset, len(keys))

	p := pool.New().WithMaxGoroutines(r.maxConcurrency)
	for i, key := range keys {
		p.Go(func() {
			assets[i] = r.Resolve(ctx, key, r.size)
		})
	}
	p.Wait()

	return assets
}

func (r *AssetResolver) selectKeys(symptomKeys []string, count int) []string {
	if len(symptomKeys) == 0 {
		return truncate(defaultGallery, count)
	}

	selected := truncate(symptomKeys, count)
	if len(selected) >= count {
		return selected
	}

	categories := make(map[string]bool)
	for _, key := range symptomKeys {
		lower := strings.ToLower(key)
		for _, category := range backfillCategories {
			if containsAnyFold(lower, category.terms) {
				categories[category.name] = true
				break
			}
		}
	}
	if len(categories) == 0 {
		categories = defaultBackfill
	}

	seen := make(map[string]bool, count)
	for _, key := range selected {
		seen[symptom.Canonical(key)] = true
	}
	for _, category := range backfillCategories {
		if !categories[category.name] {
			continue
		}
		for _, s := range category.symptoms {
			if len(selected) >= count {
				return selected
			}
			if !seen[symptom.Canonical(s)] {
				seen[symptom.Canonical(s)] = true
				selected = append(selected, s)
			}
		}
	}
	return selected
}

func truncate(list []string, n int) []string {
	if len(list) > n {
		list = list[:n]
	}
	return append([]string(nil), list...)
}

// Gallery pages through images for free-text input. Each input token
// contributes the vocabulary symptoms containing it and its related
// symptoms; the rest of the vocabulary pads the list before paging.
func (r *AssetResolver) Gallery(ctx context.Context, input string, offset, count int) []domain.SymptomAsset {
	if count <= 0 {
		count = DefaultGalleryCount
	}
	if offset < 0 {
		offset = 0
	}

	tokens := symptom.SplitInput(input)
	if len(tokens) == 0 {
		if offset == 0 {
			return r.ResolveMany(ctx, nil, count)
		}
		return r.ResolveMany(ctx, page(r.vocabulary.Sorted(), offset, count), count)
	}

	names := r.vocabulary.Names()
	var matched []string
	for _, token := range tokens {
		lower := strings.ToLower(token)
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), lower) {
				matched = append(matched, name)
			}
		}
	}
	for _, token := range tokens {
		matched = append(matched, symptom.FindRelated(token, names, relatedPerToken)...)
	}

	unique := dedupe(matched)
	if len(unique) < offset+count {
		present := make(map[string]bool, len(unique))
		for _, s := range unique {
			present[s] = true
		}
		for _, name := range names {
			if !present[name] {
				unique = append(unique, name)
			}
		}
	}

	return r.ResolveMany(ctx, page(unique, offset, count), count)
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func page(list []string, offset, count int) []string {
	if offset >= len(list) {
		return nil
	}
	end := offset + count
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
