package driver

const (
	SaveFactorQuery = `
		MERGE (n:Factor {id: $id})
		SET n.name = $name,
			n.keywords = $keywords
		RETURN n.id AS id
	`

	// Cascade to incident links is DETACH DELETE; the in-memory model
	// mirrors the same cascade.
	DeleteFactorQuery = `
		MATCH (n:Factor {id: $id})
		DETACH DELETE n
	`

	// The three estimates are flattened onto the relationship as
	// per-estimate type tags plus (a, b) shape parameters.
	SaveCausalLinkQuery = `
		MATCH (parent:Factor {id: $parent_id})
		MATCH (child:Factor {id: $child_id})
		MERGE (parent)-[l:CAUSES {id: $id}]->(child)
		SET l.m1_type = $m1_type,
			l.m1_a = $m1_a,
			l.m1_b = $m1_b,
			l.m2_type = $m2_type,
			l.m2_a = $m2_a,
			l.m2_b = $m2_b,
			l.m3_type = $m3_type,
			l.m3_a = $m3_a,
			l.m3_b = $m3_b,
			l.m1_memo = $m1_memo,
			l.m2_memo = $m2_memo,
			l.m3_memo = $m3_memo,
			l.ref_id = $ref_id,
			l.edge_key = $edge_key
		RETURN l.id AS id
	`

	DeleteCausalLinkQuery = `
		MATCH ()-[l:CAUSES {id: $id}]->()
		DELETE l
	`

	// Links citing a removed reference are deleted with it, matching
	// the in-memory cascade.
	DeleteLinksByReferenceQuery = `
		MATCH ()-[l:CAUSES]->()
		WHERE l.ref_id = $id
		DELETE l
	`

	SaveReferenceQuery = `
		MERGE (r:Reference {id: $id})
		SET r.title = $title,
			r.year = $year,
			r.authors = $authors,
			r.type = $type,
			r.publisher = $publisher
		RETURN r.id AS id
	`

	DeleteReferenceQuery = `
		MATCH (r:Reference {id: $id})
		DELETE r
	`

	LoadFactorsQuery = `
		MATCH (n:Factor)
		RETURN n.id AS id, n.name AS name, n.keywords AS keywords
	`

	LoadLinksQuery = `
		MATCH (parent:Factor)-[l:CAUSES]->(child:Factor)
		RETURN l.id AS id, parent.id AS parent_id, child.id AS child_id,
			l.m1_type AS m1_type, l.m1_a AS m1_a, l.m1_b AS m1_b,
			l.m2_type AS m2_type, l.m2_a AS m2_a, l.m2_b AS m2_b,
			l.m3_type AS m3_type, l.m3_a AS m3_a, l.m3_b AS m3_b,
			l.m1_memo AS m1_memo, l.m2_memo AS m2_memo, l.m3_memo AS m3_memo,
			l.ref_id AS ref_id, l.edge_key AS edge_key
	`

	LoadReferencesQuery = `
		MATCH (r:Reference)
		RETURN r.id AS id, r.title AS title, r.year AS year,
			r.authors AS authors, r.type AS type, r.publisher AS publisher
	`
)
