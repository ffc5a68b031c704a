package schema

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeColumnSource struct {
	columns []string
	err     error
	calls   int
}

func (f *fakeColumnSource) Columns(_ context.Context, _ string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.columns, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProbeDefaultsToNoCapabilities(t *testing.T) {
	probe := NewProbe(&fakeColumnSource{}, "assets", testLogger())

	caps := probe.Current()
	require.False(t, caps.CurrentValue)
	require.False(t, caps.Quantity)
	require.False(t, caps.InvoiceNumber)
}

func TestProbeRefreshDetectsOptionalColumns(t *testing.T) {
	source := &fakeColumnSource{columns: []string{
		"id", "name", "serial_no", "current_value", "quantity",
	}}
	probe := NewProbe(source, "assets", testLogger())

	require.NoError(t, probe.Refresh(context.Background()))

	caps := probe.Current()
	require.True(t, caps.CurrentValue)
	require.True(t, caps.Quantity)
	require.False(t, caps.InvoiceNumber)
}

func TestProbeRefreshReplacesSnapshot(t *testing.T) {
	source := &fakeColumnSource{columns: []string{"id", "current_value", "invoice_no"}}
	probe := NewProbe(source, "assets", testLogger())
	require.NoError(t, probe.Refresh(context.Background()))
	require.True(t, probe.Current().InvoiceNumber)

	// Column dropped between refreshes.
	source.columns = []string{"id", "current_value"}
	require.NoError(t, probe.Refresh(context.Background()))

	caps := probe.Current()
	require.True(t, caps.CurrentValue)
	require.False(t, caps.InvoiceNumber)
}

func TestProbeRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	source := &fakeColumnSource{columns: []string{"id", "quantity"}}
	probe := NewProbe(source, "assets", testLogger())
	require.NoError(t, probe.Refresh(context.Background()))

	source.err = errors.New("connection reset")
	err := probe.Refresh(context.Background())
	require.Error(t, err)
	require.True(t, probe.Current().Quantity)
}
