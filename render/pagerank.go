package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/sql/expression"
	"github.com/brahmand-sql/cyphersql/sql/plan"
)

// lowerPageRankSource compiles CALL pagerank(...) YIELD node, score into
// the non-recursive iterated-CTE expansion of §4.5.2: an edge union over
// every relationship table, a node and out-degree CTE derived from it, an
// initial uniform-score CTE, and one additional CTE per iteration summing
// each in-neighbor's contribution. The final iteration's CTE becomes the
// row source; node/score aliases are bound through aliasMap rather than
// pctx, since PageRank is never entered into VariableScope upstream.
func (l *lowerer) lowerPageRankSource(rp *RenderPlan, pr *plan.PageRank) error {
	edgesName := l.pctx.NextSyntheticName("pr_edges")
	rp.CTEs = append(rp.CTEs, CTE{Name: edgesName, Raw: pageRankEdgesSQL(l.schema, pr.TypeFilter)})

	nodesName := l.pctx.NextSyntheticName("pr_nodes")
	rp.CTEs = append(rp.CTEs, CTE{Name: nodesName, Raw: fmt.Sprintf(
		"SELECT DISTINCT id FROM (SELECT from_id AS id FROM %s UNION ALL SELECT to_id AS id FROM %s)",
		edgesName, edgesName)})

	outdegName := l.pctx.NextSyntheticName("pr_outdeg")
	rp.CTEs = append(rp.CTEs, CTE{Name: outdegName, Raw: fmt.Sprintf(
		"SELECT from_id AS id, count() AS out_degree FROM %s GROUP BY from_id", edgesName)})

	iterations := pr.Iterations
	if iterations < 1 {
		iterations = 1
	}
	scoreNames := make([]string, iterations+1)
	scoreNames[0] = l.pctx.NextSyntheticName("pr_score0")
	rp.CTEs = append(rp.CTEs, CTE{Name: scoreNames[0], Raw: fmt.Sprintf(
		"SELECT id, 1.0 / (SELECT count() FROM %s) AS score FROM %s", nodesName, nodesName)})

	for i := 1; i <= iterations; i++ {
		scoreNames[i] = l.pctx.NextSyntheticName(fmt.Sprintf("pr_score%d", i))
		rp.CTEs = append(rp.CTEs, CTE{
			Name: scoreNames[i],
			Raw:  pageRankIterationSQL(nodesName, edgesName, outdegName, scoreNames[i-1], pr.Damping),
		})
	}

	last := scoreNames[iterations]
	rp.From = FromClause{Table: last, Alias: pr.NodeAlias}
	l.aliasMap[pr.NodeAlias] = expression.NewColumn(pr.NodeAlias, "id")
	l.aliasMap[pr.ScoreAlias] = expression.NewColumn(pr.NodeAlias, "score")
	return nil
}

// pageRankEdgesSQL unions every relationship table's (from, to) columns
// into a single edge set, narrowed to typeFilter when PageRank's CALL
// named one. Relationship names are sorted first so the generated SQL is
// deterministic across compiles of the same schema.
func pageRankEdgesSQL(schema *catalog.Schema, typeFilter string) string {
	names := make([]string, 0, len(schema.Relationships))
	for name := range schema.Relationships {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		rs := schema.Relationships[name]
		if typeFilter != "" && rs.TypeLabel != typeFilter {
			continue
		}
		where := ""
		if rs.IsHeterogeneous() {
			vals := make([]string, len(rs.TypeValues))
			for i, v := range rs.TypeValues {
				vals[i] = fmt.Sprintf("'%s'", v)
			}
			where = fmt.Sprintf(" WHERE %s IN (%s)", rs.TypeColumn, strings.Join(vals, ", "))
		}
		parts = append(parts, fmt.Sprintf("SELECT %s AS from_id, %s AS to_id FROM %s%s",
			rs.FromColumn, rs.ToColumn, rs.TableName, where))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// pageRankIterationSQL computes one round of score = (1-d)/N + d * sum(
// prev_score / out_degree) over in-neighbors, the standard PageRank update
// with a uniform random-jump term.
func pageRankIterationSQL(nodesName, edgesName, outdegName, prevName string, damping float64) string {
	return fmt.Sprintf(
		"SELECT n.id AS id, (%g) / (SELECT count() FROM %s) + (%g) * coalesce(sum(c.contrib), 0) AS score\n"+
			"FROM %s AS n\n"+
			"LEFT JOIN (\n"+
			"  SELECT e.to_id AS id, p.score / d.out_degree AS contrib\n"+
			"  FROM %s AS e\n"+
			"  JOIN %s AS p ON p.id = e.from_id\n"+
			"  JOIN %s AS d ON d.id = e.from_id\n"+
			") AS c ON c.id = n.id\n"+
			"GROUP BY n.id",
		1-damping, nodesName, damping, nodesName, edgesName, prevName, outdegName)
}
