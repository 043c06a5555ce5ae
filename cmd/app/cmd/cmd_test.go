package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
	imgio "image-processing-engine/internal/io"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(context.Background(), "test-sha")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeImage(t *testing.T, dir, name string, width, height int, seed uint8) string {
	t.Helper()
	samples := make([]uint8, width*height*3)
	for i := range samples {
		samples[i] = uint8(i)*7 + seed
	}
	buf, err := core.NewPixelBuffer(width, height, 3, samples)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	path := filepath.Join(dir, name)
	require.NoError(t, imgio.NewImageLoader(logger).SaveImage(buf, path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "test-sha\n", out)
}

func TestList_JSON(t *testing.T) {
	out, err := execute(t, "list", "--format", "json")
	require.NoError(t, err)

	var docs []algorithmDoc
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	byName := make(map[string]algorithmDoc)
	for _, d := range docs {
		byName[d.Name] = d
	}
	require.Contains(t, byName, "canny")
	assert.Equal(t, "Edges", byName["canny"].Category)
	assert.NotEmpty(t, byName["canny"].Parameters)
	assert.Contains(t, byName, "equalize")
}

func TestProcessingCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 12, 8, 3)
	out := filepath.Join(dir, "out.png")

	_, err := execute(t, "filter", "-i", in, "-o", out, "--type", "median", "-k", "3")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	buf, err := imgio.NewImageLoader(logger).LoadImage(out)
	require.NoError(t, err)
	assert.Equal(t, 12, buf.Width())
	assert.Equal(t, 8, buf.Height())
}

func TestProcessingCommand_InvalidParameter(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 6, 6, 0)

	_, err := execute(t, "filter", "-i", in, "-o", filepath.Join(dir, "out.png"), "-k", "4")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = execute(t, "edge", "-i", in, "-o", filepath.Join(dir, "out.png"), "-p", "laplace")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestEdgeCommand_OperatorCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 10, 8, 3)

	for _, name := range []string{"Canny", "SOBEL", " prewitt "} {
		out := filepath.Join(dir, "edges.png")
		_, err := execute(t, "edge", "-i", in, "-o", out, "-p", name)
		require.NoError(t, err, name)

		logger := logrus.New()
		logger.SetOutput(io.Discard)
		buf, err := imgio.NewImageLoader(logger).LoadImageGrayscale(out)
		require.NoError(t, err)
		assert.Equal(t, 10, buf.Width(), name)
	}
}

func TestHybrid_ResizePolicy(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.png", 16, 16, 1)
	b := writeImage(t, dir, "b.png", 10, 12, 2)
	out := filepath.Join(dir, "hybrid.png")

	_, err := execute(t, "hybrid", "--low", a, "--high", b, "-o", out)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	_, err = execute(t, "hybrid", "--low", a, "--high", b, "-o", out, "--resize", "--radius-low", "4", "--radius-high", "4")
	require.NoError(t, err)
}

func TestHistogram_JSONAndText(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 5, 4, 0)

	out, err := execute(t, "histogram", "-i", in, "--cdf")
	require.NoError(t, err)
	var doc histogramDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.True(t, doc.Cumulative)
	for _, name := range []string{"blue", "green", "red"} {
		require.Len(t, doc.Channels[name], 256)
		assert.Equal(t, 20, doc.Channels[name][255])
	}

	out, err = execute(t, "histogram", "-i", in, "--gray", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "level\tgray\n")
}

func TestCompare_Identical(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 16, 16, 5)

	out, err := execute(t, "compare", "--original", in, "--processed", in, "-f", "json")
	require.NoError(t, err)

	var report struct {
		OverallScore float64            `json:"overall_score"`
		Metrics      map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.InDelta(t, 1.0, report.Metrics["ssim"], 1e-9)
	assert.Positive(t, report.OverallScore)
}

func TestWriteHistogramText_SkipsEmptyLevels(t *testing.T) {
	hist := make([][256]int, 1)
	hist[0][3] = 2
	hist[0][200] = 1

	var buf bytes.Buffer
	writeHistogramText(&buf, hist, []string{"gray"})
	assert.Equal(t, "level\tgray\n3\t2\n200\t1\n", buf.String())
}
