package telemetry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/storetest"
	"github.com/Makepad-fr/tada/internal/todosync"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "tada"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSyncOperationsEmitSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewProvider(Config{ServiceName: "tada", ServiceVersion: "test"}, sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	store := storetest.New(model.Item{ID: "1", Description: "A", Status: "open"})
	t.Cleanup(store.Close)
	client, err := remote.New(store.URL())
	require.NoError(t, err)
	s := todosync.New(client, nil)
	st := todosync.NewState()

	_, err = s.ListTodos(context.Background(), st)
	require.NoError(t, err)
	store.Fail(http.MethodDelete, "", http.StatusInternalServerError, 1)
	require.Error(t, s.DeleteTodo(context.Background(), st, "1"))

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, sp := range rec.Ended() {
		byName[sp.Name()] = sp
	}
	require.Contains(t, byName, "todosync.ListTodos")
	require.Contains(t, byName, "todosync.DeleteTodo")
	assert.Equal(t, codes.Unset, byName["todosync.ListTodos"].Status().Code)
	assert.Equal(t, codes.Error, byName["todosync.DeleteTodo"].Status().Code)

	var httpSpans int
	for _, sp := range rec.Ended() {
		if sp.Parent().IsValid() && sp.Parent().SpanID() == byName["todosync.ListTodos"].SpanContext().SpanID() {
			httpSpans++
		}
	}
	assert.Equal(t, 1, httpSpans, "remote call is traced under the sync span")
}
