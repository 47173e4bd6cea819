package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unit-recon/internal/app"
	"unit-recon/internal/memstore"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ADDR", "")

	root, r := newRootCommand()
	t.Cleanup(r.close)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDemoCommand(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "Auto-link created 4 link(s).")
	assert.Contains(t, out, "LINK STATISTICS")
	assert.Contains(t, out, "RECONCILIATION REPORT")
	assert.Contains(t, out, "Completion : 80.00%")
	assert.Contains(t, out, "SERIAL MISMATCHES")
	assert.Contains(t, out, "TN-0009")
	assert.NotContains(t, out, "All units matched.")
}

func TestRunDemo_SharedService(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAppService(memstore.New(), nil, 0, nil)

	var first, second bytes.Buffer
	require.NoError(t, runDemo(ctx, svc, &first))
	require.NoError(t, runDemo(ctx, svc, &second))

	assert.Contains(t, second.String(), "Auto-link created 4 link(s).")
}

func TestCommands_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"autolink bad po", []string{"autolink", "--po", "nope", "--delivery", "nope"}, "invalid --po"},
		{"autolink missing flags", []string{"autolink"}, "required flag"},
		{"validate bad unit", []string{"validate", "--po-unit", "x", "--delivery-unit", "y"}, "invalid --po-unit"},
		{"stats bad delivery", []string{"stats", "--delivery", "x"}, "invalid --delivery"},
		{"stats without scope", []string{"stats"}, "purchase_order_id or delivery_id"},
		{"migrate on memory store", []string{"migrate", "up"}, "STORE_DRIVER=postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReconcileCommand_JSON(t *testing.T) {
	_, err := run(t, "reconcile", "--json", "--po", "7d3f0e2c-1111-4c4c-9a9a-000000000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
