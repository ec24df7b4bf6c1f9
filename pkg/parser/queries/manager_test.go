package queries

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/refract/pkg/parser"
)

func newTestQueryManager(t *testing.T) *QueryManager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })
	qm := NewQueryManager(pm, logger)
	t.Cleanup(func() { qm.Close() })
	return qm
}

// namedQueries flattens a query set into name -> query text, skipping empty
// slots.
func namedQueries(qs QuerySet) map[string]string {
	out := make(map[string]string)
	for _, bq := range qs.Bindings {
		out["bindings/"+bq.Kind] = bq.Query
	}
	for kind, q := range qs.Definitions {
		out["definitions/"+string(kind)] = q
	}
	for name, q := range map[string]string{
		"identifiers":  qs.Identifiers,
		"symbols":      qs.Symbols,
		"declaration":  qs.Declaration,
		"function":     qs.Function,
		"functionBody": qs.FunctionBody,
		"calls":        qs.Calls,
		"blocks":       qs.Blocks,
		"comments":     qs.Comments,
	} {
		out[name] = q
	}
	for name, q := range out {
		if q == "" {
			delete(out, name)
		}
	}
	return out
}

// Every query in the registry must compile against its bundled grammar; a
// query the grammar rejects silently disables whatever feature consumes it.
func TestRegistryQueriesCompile(t *testing.T) {
	qm := newTestQueryManager(t)

	for _, lang := range parser.SupportedLanguages() {
		qs, ok := Set(lang)
		require.True(t, ok, "missing query set for %s", lang)

		for name, query := range namedQueries(qs) {
			t.Run(lang.String()+"/"+name, func(t *testing.T) {
				_, err := qm.Get(lang, false, query)
				assert.NoError(t, err)
			})
		}
	}

	// TypeScript queries must also compile against the TSX grammar variant.
	tsSet, _ := Set(parser.LanguageTypeScript)
	for name, query := range namedQueries(tsSet) {
		t.Run("tsx/"+name, func(t *testing.T) {
			_, err := qm.Get(parser.LanguageTypeScript, true, query)
			assert.NoError(t, err)
		})
	}
}

func TestGetInvalidQuery(t *testing.T) {
	qm := newTestQueryManager(t)

	_, err := qm.Get(parser.LanguageRust, false, "(no_such_node) @x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryCompile)
}

func TestGetCachesCompiledQueries(t *testing.T) {
	qm := newTestQueryManager(t)

	qs, _ := Set(parser.LanguageRust)
	first, err := qm.Get(parser.LanguageRust, false, qs.Identifiers)
	require.NoError(t, err)
	second, err := qm.Get(parser.LanguageRust, false, qs.Identifiers)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
