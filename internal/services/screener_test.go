package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/services"
	"alfredoptarigan/resume-shortlister/mocks"
)

func promptFor(name string) interface{} {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, name)
	})
}

func newScreener(t *testing.T, invoker services.ModelInvoker, deps services.ScreeningDeps) services.ScreeningService {
	t.Helper()

	parser, err := services.NewResponseParser(services.ExtractBalanced)
	require.NoError(t, err)

	deps.Catalog = services.DefaultJobCatalog()
	deps.Extractor = services.NewTextExtractor()
	deps.Invoker = invoker
	deps.Parser = parser
	return services.NewScreeningService(deps)
}

func sampleUploads() []models.ResumeUpload {
	return []models.ResumeUpload{
		{Name: "alice.txt", Data: []byte("Alice Example\nReact and Node.js, 4 years")},
		{Name: "bob.txt", Data: []byte("Bob Example\nJava developer")},
		{Name: "photo.png", Data: []byte{0x89, 0x50}},
		{Name: "empty.txt", Data: []byte("   \n  ")},
		{Name: "eve.txt", Data: []byte("Eve Example\nPython, AWS")},
		{Name: "carl.txt", Data: []byte("Carl Example\nFull stack, Azure, CI/CD")},
	}
}

func TestScreen_RecordsEveryOutcomeAndContinues(t *testing.T) {
	invoker := new(mocks.MockModelInvoker)
	invoker.On("Invoke", mock.Anything, promptFor("Alice Example")).
		Return(`Here you go: {"score": 80, "reasoning": ["Good React"], "missing": ["AWS"]}`, nil)
	invoker.On("Invoke", mock.Anything, promptFor("Bob Example")).
		Return("I cannot evaluate this resume.", nil)
	invoker.On("Invoke", mock.Anything, promptFor("Eve Example")).
		Return("", &services.InvocationError{Provider: "bedrock", Err: errors.New("AccessDeniedException")})
	invoker.On("Invoke", mock.Anything, promptFor("Carl Example")).
		Return(`{"score": 95, "reasoning": "Excellent", "missing": []}`, nil)

	batches := services.NewMemoryBatchStore(10)
	screener := newScreener(t, invoker, services.ScreeningDeps{Batches: batches})

	batch, err := screener.Screen(context.Background(), "Software Developer", sampleUploads())
	require.NoError(t, err)

	require.Len(t, batch.Items, 6)
	names := []string{}
	for _, item := range batch.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"alice.txt", "bob.txt", "photo.png", "empty.txt", "eve.txt", "carl.txt"}, names)

	assert.Equal(t, 80, batch.Items[0].Result.Score)
	assert.Equal(t, models.FailureNoJSON, batch.Items[1].Failure.Kind)
	assert.Equal(t, "I cannot evaluate this resume.", batch.Items[1].Failure.RawOutput)
	assert.Equal(t, models.FailureExtraction, batch.Items[2].Failure.Kind)
	assert.Equal(t, models.FailureEmpty, batch.Items[3].Failure.Kind)
	assert.Equal(t, models.FailureInvocation, batch.Items[4].Failure.Kind)
	assert.Equal(t, 95, batch.Items[5].Result.Score)

	require.Len(t, batch.Results, 2)
	assert.Equal(t, "alice.txt", batch.Results[0].Name)
	assert.Equal(t, "carl.txt", batch.Results[1].Name)

	summary := batch.Report.Summary
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 4, summary.Failed)
	assert.Equal(t, "carl.txt", batch.Report.Top[0].Name)
	assert.Equal(t, "Software Developer", batch.Role)

	stored, err := screener.Batch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Same(t, batch, stored)

	invoker.AssertNumberOfCalls(t, "Invoke", 4)
	invoker.AssertExpectations(t)
}

func TestScreen_UnknownRole(t *testing.T) {
	invoker := new(mocks.MockModelInvoker)
	screener := newScreener(t, invoker, services.ScreeningDeps{})

	_, err := screener.Screen(context.Background(), "Astronaut", sampleUploads())

	assert.True(t, errors.Is(err, services.ErrUnknownRole))
	invoker.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestScreen_SideChannels(t *testing.T) {
	invoker := new(mocks.MockModelInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).Return(`{"score": 70}`, nil)

	history := new(mocks.MockScreeningRepository)
	history.On("Record", mock.Anything, "bedrock", "claude-3").Return(nil, errors.New("database is down"))

	exports := new(mocks.MockExportStore)
	exports.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/x.csv", nil)

	index := new(mocks.MockCandidateIndex)
	index.On("Index", mock.Anything, mock.Anything, "Intern", mock.MatchedBy(func(docs []services.ScoredDocument) bool {
		return len(docs) == 1 && docs[0].Result.Name == "alice.txt" && strings.Contains(docs[0].Text, "Alice Example")
	})).Return(errors.New("qdrant unavailable"))

	screener := newScreener(t, invoker, services.ScreeningDeps{
		History:  history,
		Exports:  exports,
		Index:    index,
		Provider: "bedrock",
		Model:    "claude-3",
	})

	uploads := sampleUploads()[:1]
	batch, err := screener.Screen(context.Background(), "Intern", uploads)

	require.NoError(t, err)
	assert.Len(t, batch.Results, 1)

	exports.AssertCalled(t, "Archive", mock.Anything, batch.ID.String()+".csv", mock.MatchedBy(func(data []byte) bool {
		return strings.HasPrefix(string(data), "name,score,reasoning,missing\nalice.txt,70,")
	}))
	history.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestExportCSV_FallsBackToArchive(t *testing.T) {
	invoker := new(mocks.MockModelInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).Return(`{"score": 70}`, nil)

	exports := new(mocks.MockExportStore)
	exports.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("archived", nil)

	screener := newScreener(t, invoker, services.ScreeningDeps{
		Exports: exports,
		Batches: services.NewMemoryBatchStore(1),
	})

	ctx := context.Background()
	first, err := screener.Screen(ctx, "Intern", sampleUploads()[:1])
	require.NoError(t, err)
	second, err := screener.Screen(ctx, "Intern", sampleUploads()[:1])
	require.NoError(t, err)

	live, err := screener.ExportCSV(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(live), "name,score,reasoning,missing\n"))

	exports.On("Fetch", mock.Anything, first.ID.String()+".csv").Return([]byte("archived csv"), nil)
	archived, err := screener.ExportCSV(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "archived csv", string(archived))

	exports.On("Fetch", mock.Anything, mock.Anything).Return(nil, services.ErrExportNotFound)
	_, err = screener.ExportCSV(ctx, uuid.New())
	assert.True(t, errors.Is(err, services.ErrBatchNotFound))
}

func TestExportCSV_UnknownBatch(t *testing.T) {
	screener := newScreener(t, new(mocks.MockModelInvoker), services.ScreeningDeps{
		Batches: services.NewMemoryBatchStore(1),
	})

	_, err := screener.ExportCSV(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, services.ErrBatchNotFound))
}
