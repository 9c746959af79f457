// Package compiler wires the parser, analyzer, optimizer, render lowering
// and SQL generator into the single entry point described in SPEC_FULL.md
// §6: compile(cypher_text, schema_name, parameters). It plays the role the
// teacher's own Engine plays in engine.go — a thin façade that sequences
// already-independent stages and owns the PreparedDataCache-shaped cache in
// front of them — generalized here to a registry of schemas rather than a
// single database.
package compiler

import (
	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/cypher/parser"
	"github.com/brahmand-sql/cyphersql/querycache"
	"github.com/brahmand-sql/cyphersql/render"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sql/analyzer"
	"github.com/brahmand-sql/cyphersql/sql/optimizer"
	"github.com/brahmand-sql/cyphersql/sql/planbuilder"
	"github.com/brahmand-sql/cyphersql/sqlgen"
)

// Config controls the bounds and defaults a Compiler is built with.
type Config struct {
	// MaxCacheEntries bounds the query-template cache. Non-positive means
	// unbounded, matching querycache.New's own default.
	MaxCacheEntries int
	// MaxSubstitutionCacheEntries bounds the substituted-SQL cache.
	MaxSubstitutionCacheEntries int
	// Generator is passed through to sqlgen.Generate for every compile.
	Generator sqlgen.Config
}

// CompiledQuery is the result of a successful compile (§6.1): the
// generated SQL, its cache template id (stable across repeated compiles
// of the same query text and schema), and whether this compile hit the
// template cache.
type CompiledQuery struct {
	SQL        string
	TemplateID string
	CacheHit   bool
}

// Compiler is the compile(cypher_text, schema_name, parameters) entry
// point's owner: a schema Registry, a query-template Cache wired to it as
// an Invalidator, and a secondary SubstitutionCache memoizing parameter
// binding for hot repeated calls against the same template.
type Compiler struct {
	registry  *catalog.Registry
	cache     *querycache.Cache
	subCache  *querycache.SubstitutionCache
	genConfig sqlgen.Config
}

// New builds a Compiler around registry, wiring its template cache up as
// an invalidator so a schema Register call drops every template scoped to
// that schema name.
func New(registry *catalog.Registry, cfg Config) *Compiler {
	cache := querycache.New(cfg.MaxCacheEntries)
	registry.OnInvalidate(cache)
	return &Compiler{
		registry:  registry,
		cache:     cache,
		subCache:  querycache.NewSubstitutionCache(cfg.MaxSubstitutionCacheEntries),
		genConfig: cfg.Generator,
	}
}

// Compile implements §6.1's compile(cypher_text, schema_name, parameters).
// A leading `CYPHER replan=...` directive (§4.8, §6.4) controls whether the
// template cache is consulted or populated for this call; it is stripped
// before the remaining text reaches the parser. Parameters are substituted
// into the generated template's `$name` placeholders as the last step,
// after cache lookup/population, per §9's ordering.
func (c *Compiler) Compile(ctx *sql.Context, cypherText, schemaName string, parameters map[string]interface{}) (*CompiledQuery, error) {
	span, ctx := ctx.Span("compiler.Compile")
	defer span.Finish()

	body, mode := querycache.StripReplanDirective(cypherText)
	normalized := querycache.NormalizeQuery(body)

	schema, err := c.registry.Resolve(schemaName)
	if err != nil {
		return nil, err
	}

	var tmpl *querycache.Template
	cacheHit := false
	if mode != querycache.ReplanForce {
		if t, ok := c.cache.Get(normalized, schemaName); ok {
			tmpl = t
			cacheHit = true
		}
	}

	if tmpl == nil {
		generatedSQL, genErr := c.generate(ctx, schema, body)
		if genErr != nil {
			return nil, genErr
		}
		if mode == querycache.ReplanSkip {
			tmpl = &querycache.Template{SQL: generatedSQL, Schema: schemaName}
		} else {
			tmpl = c.cache.Put(normalized, schemaName, generatedSQL)
		}
	}

	finalSQL, err := c.substitute(tmpl, parameters)
	if err != nil {
		return nil, err
	}

	return &CompiledQuery{SQL: finalSQL, TemplateID: tmpl.ID, CacheHit: cacheHit}, nil
}

// generate runs the full parse -> plan -> analyze -> optimize -> lower ->
// generate pipeline over a cache-stripped query body.
func (c *Compiler) generate(ctx *sql.Context, schema *catalog.Schema, body string) (string, error) {
	query, err := parser.Parse(body)
	if err != nil {
		return "", err
	}

	n, err := planbuilder.New(schema).Build(query)
	if err != nil {
		return "", err
	}

	n, pctx, err := analyzer.Analyze(ctx, schema, n)
	if err != nil {
		return "", err
	}

	n, err = optimizer.Optimize(ctx, pctx, schema, n)
	if err != nil {
		return "", err
	}

	// The optimizer's CollectUnwindElimination can synthesize a new,
	// unnamed WithClause (see sql/optimizer's Open Question decision); run
	// ScopeSplitter once more so every WithClause in the final tree
	// carries a synthetic CTE name before render.Lower needs one.
	n, _, err = analyzer.ScopeSplitter(ctx, pctx, n, schema)
	if err != nil {
		return "", err
	}

	rp, err := render.Lower(ctx, pctx, schema, n)
	if err != nil {
		return "", err
	}

	return sqlgen.Generate(rp, c.genConfig)
}

// substitute fills tmpl's `$name` placeholders with parameters, consulting
// and populating the SubstitutionCache so a hot template re-run with
// identical parameter values skips the rewrite pass.
func (c *Compiler) substitute(tmpl *querycache.Template, parameters map[string]interface{}) (string, error) {
	if tmpl.ID != "" {
		if cached, ok, err := c.subCache.Get(tmpl.ID, parameters); err != nil {
			return "", err
		} else if ok {
			return cached, nil
		}
	}

	out, err := querycache.Substitute(tmpl.SQL, parameters)
	if err != nil {
		return "", err
	}

	if tmpl.ID != "" {
		if err := c.subCache.Put(tmpl.ID, parameters, out); err != nil {
			return "", err
		}
	}
	return out, nil
}

// RegisterSchema installs schema into the Compiler's Registry, notifying
// the template cache so any stale entries for a re-registered schema name
// are dropped. It's a thin passthrough kept here so callers only need to
// hold a *Compiler, not also a *catalog.Registry, for the common case of
// loading schemas before compiling against them.
func (c *Compiler) RegisterSchema(schema *catalog.Schema) error {
	return c.registry.Register(schema)
}
