// Command cyphersql is a minimal smoke test for the compiler pipeline,
// playing the role the teacher's own _example/main.go plays for
// go-mysql-server: a runnable demonstration of the top-level API against a
// small hand-built schema, not a production entry point.
//
// Run with: go run ./cmd/cyphersql
package main

import (
	"fmt"
	"os"

	"github.com/brahmand-sql/cyphersql/catalog"
	"github.com/brahmand-sql/cyphersql/compiler"
	"github.com/brahmand-sql/cyphersql/sql"
	"github.com/brahmand-sql/cyphersql/sqlgen"
)

var queries = []struct {
	cypher     string
	parameters map[string]interface{}
}{
	{cypher: "MATCH (u:Person) WHERE u.age > $minAge RETURN u.name", parameters: map[string]interface{}{"minAge": 30}},
	{cypher: "MATCH (a:Person)-[:FOLLOWS]->(b:Person) WHERE a.name = $name RETURN b.name", parameters: map[string]interface{}{"name": "Alice"}},
	{cypher: "CYPHER replan=skip\nMATCH (p:Person) OPTIONAL MATCH (p)-[:WORKS_AT]->(c:Company) RETURN p.name, c.name"},
}

func main() {
	reg := catalog.NewRegistry()
	if err := reg.Register(socialSchema()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := compiler.New(reg, compiler.Config{
		MaxCacheEntries:             256,
		MaxSubstitutionCacheEntries: 1024,
		Generator:                   sqlgen.Config{MaxRecursiveDepth: 50},
	})

	ctx := sql.NewEmptyContext()
	for _, q := range queries {
		out, err := c.Compile(ctx, q.cypher, "social", q.parameters)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
			continue
		}
		fmt.Printf("-- template %s (cache hit: %v)\n%s;\n\n", out.TemplateID, out.CacheHit, out.SQL)
	}
}

func socialSchema() *catalog.Schema {
	s := catalog.NewSchema("social")
	s.Nodes["Person"] = &catalog.NodeSchema{
		Label:      "Person",
		TableName:  "person",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name", "age": "age"},
	}
	s.Nodes["Company"] = &catalog.NodeSchema{
		Label:      "Company",
		TableName:  "company",
		IDColumn:   "id",
		Properties: map[string]string{"name": "name"},
	}
	s.Relationships["FOLLOWS"] = &catalog.RelationshipSchema{
		TypeLabel:  "FOLLOWS",
		TableName:  "follows",
		FromColumn: "from_id",
		ToColumn:   "to_id",
		FromLabel:  "Person",
		ToLabel:    "Person",
	}
	s.Relationships["WORKS_AT"] = &catalog.RelationshipSchema{
		TypeLabel:  "WORKS_AT",
		TableName:  "works_at",
		FromColumn: "from_id",
		ToColumn:   "to_id",
		FromLabel:  "Person",
		ToLabel:    "Company",
	}
	return s
}
