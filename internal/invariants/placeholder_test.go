package invariants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlaceholders(t *testing.T) {
	chain := Context{}.With("web", map[string]any{
		"publicIp": "54.1.2.3",
		"state":    "running",
	})

	params := map[string]any{
		"host":  "{{web.publicIp}}",
		"count": 3,
	}

	resolved, resolutions := ResolvePlaceholders(params, chain)

	assert.Equal(t, "54.1.2.3", resolved["host"])
	assert.Equal(t, 3, resolved["count"])
	assert.Equal(t, []string{"{{web.publicIp}}"}, resolutions)
}

func TestResolvePlaceholdersCaseInsensitiveProperty(t *testing.T) {
	chain := Context{}.With("db", map[string]any{"Endpoint": "db.internal:5432"})

	resolved, resolutions := ResolvePlaceholders(map[string]any{"dsn": "{{db.endpoint}}"}, chain)

	assert.Equal(t, "db.internal:5432", resolved["dsn"])
	assert.Len(t, resolutions, 1)
}

func TestResolvePlaceholdersMissingAliasStaysVerbatim(t *testing.T) {
	resolved, resolutions := ResolvePlaceholders(map[string]any{
		"host": "{{ghost.publicIp}}",
	}, Context{})

	assert.Equal(t, "{{ghost.publicIp}}", resolved["host"])
	assert.Empty(t, resolutions)
}

func TestResolvePlaceholdersMissingPropertyStaysVerbatim(t *testing.T) {
	chain := Context{}.With("web", map[string]any{"state": "running"})

	resolved, resolutions := ResolvePlaceholders(map[string]any{"host": "{{web.publicIp}}"}, chain)

	assert.Equal(t, "{{web.publicIp}}", resolved["host"])
	assert.Empty(t, resolutions)
}

func TestResolvePlaceholdersSplitsOnFirstDot(t *testing.T) {
	chain := Context{}.With("bucket", map[string]any{"tags.env": "prod"})

	resolved, _ := ResolvePlaceholders(map[string]any{"expected": "{{bucket.tags.env}}"}, chain)

	assert.Equal(t, "prod", resolved["expected"])
}

func TestResolvePlaceholdersTokenWithoutDot(t *testing.T) {
	chain := Context{}.With("web", map[string]any{"state": "running"})

	resolved, resolutions := ResolvePlaceholders(map[string]any{"value": "{{web}}"}, chain)

	assert.Equal(t, "{{web}}", resolved["value"])
	assert.Empty(t, resolutions)
}

func TestResolvePlaceholdersNestedStructures(t *testing.T) {
	chain := Context{}.With("lb", map[string]any{"dnsName": "lb.example.com"})

	params := map[string]any{
		"records": []any{"{{lb.dnsName}}", "static.example.com"},
		"nested":  map[string]any{"target": "{{lb.dnsName}}"},
	}

	resolved, resolutions := ResolvePlaceholders(params, chain)

	assert.Equal(t, []any{"lb.example.com", "static.example.com"}, resolved["records"])
	assert.Equal(t, map[string]any{"target": "lb.example.com"}, resolved["nested"])

	// The same token substituted twice records one resolution.
	assert.Equal(t, []string{"{{lb.dnsName}}"}, resolutions)
}

func TestResolvePlaceholdersEmbeddedInLargerString(t *testing.T) {
	chain := Context{}.With("web", map[string]any{"publicIp": "54.1.2.3"})

	resolved, _ := ResolvePlaceholders(map[string]any{"url": "http://{{web.publicIp}}:8080/health"}, chain)

	assert.Equal(t, "http://54.1.2.3:8080/health", resolved["url"])
}

func TestResolvePlaceholdersNonStringData(t *testing.T) {
	chain := Context{}.With("asg", map[string]any{"desired": 4})

	resolved, _ := ResolvePlaceholders(map[string]any{"expected": "{{asg.desired}}"}, chain)

	assert.Equal(t, "4", resolved["expected"])
}

func TestContextWithDoesNotMutateReceiver(t *testing.T) {
	base := Context{}.With("a", map[string]any{"x": 1})
	extended := base.With("b", map[string]any{"y": 2})

	assert.Len(t, base, 1)
	assert.Len(t, extended, 2)
	assert.NotContains(t, base, "b")
}
