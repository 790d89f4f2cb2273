package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-shortlister/internal/bootstrap"
	"alfredoptarigan/resume-shortlister/internal/services"
	"alfredoptarigan/resume-shortlister/mocks"
)

func newComponents(t *testing.T) *bootstrap.Components {
	t.Helper()

	invoker := new(mocks.MockModelInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Return(`{"score": 64, "reasoning": "Some fit", "missing": ["Go"]}`, nil)
	parser, err := services.NewResponseParser(services.ExtractBalanced)
	require.NoError(t, err)

	catalog := services.DefaultJobCatalog()
	return &bootstrap.Components{
		Catalog: catalog,
		Screener: services.NewScreeningService(services.ScreeningDeps{
			Catalog:   catalog,
			Extractor: services.NewTextExtractor(),
			Invoker:   invoker,
			Parser:    parser,
		}),
	}
}

func writeResume(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadResumes_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "zoe.txt", "Zoe")
	writeResume(t, dir, "adam.txt", "Adam")
	writeResume(t, dir, "photo.png", "binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	uploads, err := readResumes(dir)

	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "adam.txt", uploads[0].Name)
	assert.Equal(t, "zoe.txt", uploads[1].Name)
}

func TestExecute_AllScored(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "alice.txt", "Alice Example\nGo developer")
	out := filepath.Join(t.TempDir(), "results.csv")

	code := execute(context.Background(), newComponents(t), options{role: "Intern", dir: dir, out: out})

	assert.Equal(t, 0, code)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "name,score,reasoning,missing\nalice.txt,64,Some fit,Go\n", string(data))
}

func TestExecute_FailuresExitNonZero(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "alice.txt", "Alice Example")
	writeResume(t, dir, "blank.txt", "  \n ")
	out := filepath.Join(t.TempDir(), "results.csv")

	code := execute(context.Background(), newComponents(t), options{role: "Intern", dir: dir, out: out})

	assert.Equal(t, 1, code)
	assert.FileExists(t, out)
}

func TestExecute_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	writeResume(t, dir, "alice.txt", "Alice Example")
	out := filepath.Join(t.TempDir(), "results.csv")

	tests := []struct {
		name string
		opts options
	}{
		{name: "missing role", opts: options{dir: dir, out: out}},
		{name: "unknown role", opts: options{role: "Astronaut", dir: dir, out: out}},
		{name: "missing directory", opts: options{role: "Intern", dir: filepath.Join(dir, "nope"), out: out}},
		{name: "no supported files", opts: options{role: "Intern", dir: t.TempDir(), out: out}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1, execute(context.Background(), newComponents(t), tt.opts))
		})
	}
	assert.NoFileExists(t, out)
}

func TestComponentsClosedAfterFailedRun(t *testing.T) {
	comps := newComponents(t)
	closed := 0
	comps.OnClose(func() error {
		closed++
		return errors.New("already closed")
	})

	code := execute(context.Background(), comps, options{role: "", dir: t.TempDir()})
	comps.Close()

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, closed)
}
