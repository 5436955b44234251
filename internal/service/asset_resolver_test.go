package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/symptom"
	"github.com/symptom-insight-server/pkg/external"
)

func createTestAssetResolver(t *testing.T, staticDir string, generator external.ImageGenerator) *AssetResolver {
	t.Helper()
	return NewAssetResolver(
		domain.AssetConfig{
			StaticDir:         staticDir,
			DefaultSize:       120,
			GenerationEnabled: generator != nil,
			MaxConcurrency:    3,
		},
		generator,
		createTestCache(t),
		symptom.DefaultVocabulary(),
		testLogger(),
	)
}

func decodeDataURI(t *testing.T, uri, mimeType string) image.Image {
	t.Helper()
	prefix := "data:" + mimeType + ";base64,"
	require.True(t, strings.HasPrefix(uri, prefix), "unexpected data URI prefix: %.40s", uri)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{200, 50, 50, 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".png") {
		require.NoError(t, png.Encode(f, img))
		return
	}
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestAssetResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Procedural_When_Nothing_Else_Applies", func(t *testing.T) {
		resolver := createTestAssetResolver(t, "", nil)

		asset := resolver.Resolve(ctx, "purple_elbows", domain.ImageSize{Width: 200, Height: 160})
		assert.Equal(t, domain.TierProcedural, asset.ResolutionTier)
		assert.Equal(t, "Purple Elbows", asset.Symptom)
		assert.Equal(t, "Medical illustration of purple_elbows", asset.Description)

		img := decodeDataURI(t, asset.Image, "image/png")
		assert.Equal(t, image.Rect(0, 0, 200, 160), img.Bounds())
	})

	t.Run("Static_Mapping", func(t *testing.T) {
		dir := t.TempDir()
		writeTestImage(t, filepath.Join(dir, "skin rash.jpg"))
		resolver := createTestAssetResolver(t, dir, nil)

		asset := resolver.Resolve(ctx, "skin_rash", domain.ImageSize{Width: 64, Height: 48})
		assert.Equal(t, domain.TierStatic, asset.ResolutionTier)
		img := decodeDataURI(t, asset.Image, "image/jpeg")
		assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	})

	t.Run("Static_Near_Match", func(t *testing.T) {
		dir := t.TempDir()
		writeTestImage(t, filepath.Join(dir, "Joint_Pain.PNG"))
		writeTestImage(t, filepath.Join(dir, "notes.txt"))
		resolver := createTestAssetResolver(t, dir, nil)

		asset := resolver.Resolve(ctx, "joint pain", domain.ImageSize{})
		assert.Equal(t, domain.TierStatic, asset.ResolutionTier)
		img := decodeDataURI(t, asset.Image, "image/jpeg")
		assert.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds(), "default size applies")
	})

	t.Run("Unreadable_Static_Falls_Through", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cough.jpg"), []byte("not an image"), 0o644))
		resolver := createTestAssetResolver(t, dir, nil)

		asset := resolver.Resolve(ctx, "cough", domain.ImageSize{})
		assert.Equal(t, domain.TierProcedural, asset.ResolutionTier)
	})

	t.Run("Generated_Then_Cached", func(t *testing.T) {
		generator := new(MockImageGenerator)
		generator.On("GenerateImage", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "symptom: chills")
		})).Return(&external.InlineData{MimeType: "image/webp", Data: "UklGRg=="}, true, nil)

		resolver := createTestAssetResolver(t, "", generator)

		first := resolver.Resolve(ctx, "chills", domain.ImageSize{Width: 100, Height: 100})
		assert.Equal(t, domain.TierGenerated, first.ResolutionTier)
		assert.Equal(t, "data:image/webp;base64,UklGRg==", first.Image)

		second := resolver.Resolve(ctx, "chills", domain.ImageSize{Width: 100, Height: 100})
		assert.Equal(t, domain.TierCached, second.ResolutionTier)
		assert.Equal(t, first.Image, second.Image)

		other := resolver.Resolve(ctx, "chills", domain.ImageSize{Width: 50, Height: 50})
		assert.Equal(t, domain.TierGenerated, other.ResolutionTier, "size is part of the cache key")
		generator.AssertNumberOfCalls(t, "GenerateImage", 2)
	})

	t.Run("Generation_Failure_Is_Not_Cached", func(t *testing.T) {
		generator := new(MockImageGenerator)
		generator.On("GenerateImage", mock.Anything, mock.Anything).
			Return(nil, false, domain.NewNetworkError(external.ServiceImageGeneration, errors.New("timeout")))

		resolver := createTestAssetResolver(t, "", generator)
		assert.Equal(t, domain.TierProcedural, resolver.Resolve(ctx, "chills", domain.ImageSize{}).ResolutionTier)
		assert.Equal(t, domain.TierProcedural, resolver.Resolve(ctx, "chills", domain.ImageSize{}).ResolutionTier)
		generator.AssertNumberOfCalls(t, "GenerateImage", 2)
	})

	t.Run("Model_Without_Image", func(t *testing.T) {
		generator := new(MockImageGenerator)
		generator.On("GenerateImage", mock.Anything, mock.Anything).Return(nil, false, nil)

		resolver := createTestAssetResolver(t, "", generator)
		assert.Equal(t, domain.TierProcedural, resolver.Resolve(ctx, "chills", domain.ImageSize{}).ResolutionTier)
	})

	t.Run("Generation_Disabled", func(t *testing.T) {
		generator := new(MockImageGenerator)
		resolver := NewAssetResolver(domain.AssetConfig{GenerationEnabled: false}, generator, createTestCache(t), nil, testLogger())

		asset := resolver.Resolve(ctx, "chills", domain.ImageSize{})
		assert.Equal(t, domain.TierProcedural, asset.ResolutionTier)
		assert.NotEmpty(t, asset.Image)
		generator.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
	})
}

func TestRenderProcedural(t *testing.T) {
	t.Run("Categories", func(t *testing.T) {
		tests := map[string]string{
			"joint_pain":     "pain",
			"stomach_pain":   "pain",
			"high_fever":     "fever",
			"skin_rash":      "skin",
			"breathlessness": "respiratory",
			"nausea":         "digestive",
			"dizziness":      "neurological",
			"headache":       "neurological",
			"fatigue":        "default",
		}
		for key, category := range tests {
			assert.Equal(t, category, RenderCategory(key), key)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := RenderProcedural("skin_rash", "Red rash", 300, 300)
		require.NoError(t, err)
		second, err := RenderProcedural("skin_rash", "Red rash", 300, 300)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		other, err := RenderProcedural("itchy skin", "Red rash", 300, 300)
		require.NoError(t, err)
		assert.NotEqual(t, first, other)
	})

	t.Run("Card_Layout", func(t *testing.T) {
		uri, err := RenderProcedural("fatigue", strings.Repeat("x", 80), 300, 300)
		require.NoError(t, err)
		img := decodeDataURI(t, uri, "image/png")

		r, g, b, _ := img.At(7, 150).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "border is white")

		r, g, b, _ = img.At(40, 0).RGBA()
		assert.Equal(t, [3]uint32{120, 180, 220}, [3]uint32{r >> 8, g >> 8, b >> 8}, "default palette at the top")

		r, _, _, _ = img.At(40, 298).RGBA()
		assert.Less(t, r>>8, uint32(120), "gradient darkens toward the bottom")
	})

	t.Run("Display_Name", func(t *testing.T) {
		assert.Equal(t, "High Fever", DisplayName("high_fever"))
		assert.Equal(t, "Skin Rash", DisplayName(" SKIN rash "))
	})
}

func TestAssetResolver_ResolveMany(t *testing.T) {
	ctx := context.Background()
	resolver := createTestAssetResolver(t, "", nil)

	keys := func(assets []domain.SymptomAsset) []string {
		out := make([]string, len(assets))
		for i, a := range assets {
			out[i] = a.SymptomKey
		}
		return out
	}

	t.Run("Default_Set", func(t *testing.T) {
		assets := resolver.ResolveMany(ctx, nil, 8)
		assert.Equal(t, defaultGallery, keys(assets))
		for _, a := range assets {
			assert.NotEmpty(t, a.Image)
		}

		assert.Equal(t, []string{"cough", "skin_rash", "headache"}, keys(resolver.ResolveMany(ctx, nil, 3)))
	})

	t.Run("Order_Is_Preserved", func(t *testing.T) {
		input := []string{"nausea", "chills", "cough", "itching", "fatigue"}
		assert.Equal(t, input[:4], keys(resolver.ResolveMany(ctx, input, 4)))
	})

	t.Run("Backfill_By_Category", func(t *testing.T) {
		assets := resolver.ResolveMany(ctx, []string{"cough"}, 4)
		assert.Equal(t, []string{"cough", "breathlessness", "throat_irritation", "phlegm"}, keys(assets))
	})

	t.Run("Backfill_Defaults", func(t *testing.T) {
		assets := resolver.ResolveMany(ctx, []string{"zzz"}, 3)
		assert.Equal(t, []string{"zzz", "cough", "breathlessness"}, keys(assets))
	})

	t.Run("Zero_Count", func(t *testing.T) {
		assert.Empty(t, resolver.ResolveMany(ctx, []string{"cough"}, 0))
	})
}

func TestAssetResolver_Gallery(t *testing.T) {
	ctx := context.Background()
	resolver := createTestAssetResolver(t, "", nil)

	t.Run("Empty_Input", func(t *testing.T) {
		assets := resolver.Gallery(ctx, "  ", 0, 2)
		require.Len(t, assets, 2)
		assert.Equal(t, "cough", assets[0].SymptomKey)
	})

	t.Run("Empty_Input_Paged", func(t *testing.T) {
		assets := resolver.Gallery(ctx, "", 1, 2)
		sorted := symptom.DefaultVocabulary().Sorted()
		require.Len(t, assets, 2)
		assert.Equal(t, sorted[1], assets[0].SymptomKey)
		assert.Equal(t, sorted[2], assets[1].SymptomKey)
	})

	t.Run("Matches_First", func(t *testing.T) {
		assets := resolver.Gallery(ctx, "fever", 0, 2)
		require.Len(t, assets, 2)
		assert.Equal(t, "high_fever", assets[0].SymptomKey)
		assert.Equal(t, "mild_fever", assets[1].SymptomKey)
	})
}
