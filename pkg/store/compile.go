package store

import (
	"strings"
	"time"

	"nostrd.dev/pkg/filter"
	"nostrd.dev/pkg/fts"
)

// compiled is a filter reduced to a SQL WHERE clause body (without the
// leading "WHERE") and its positional arguments, per spec.md §4.4's filter
// compilation. Clauses whose input collections are empty are omitted.
type compiled struct {
	where string
	args  []any
}

func compileFilter(f *filter.F) compiled {
	var clauses []string
	var args []any

	clauses = append(
		clauses,
		`e.id NOT IN (SELECT DISTINCT event_id FROM tags WHERE name = 'expiration' AND value GLOB '[0-9]*' AND CAST(value AS INTEGER) < ?)`,
	)
	args = append(args, time.Now().Unix())

	if len(f.IDs) > 0 {
		clauses = append(clauses, `e.id IN (`+placeholders(len(f.IDs))+`)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(f.Authors) > 0 {
		clauses = append(clauses, `e.pubkey IN (`+placeholders(len(f.Authors))+`)`)
		for _, a := range f.Authors {
			args = append(args, a)
		}
	}
	if len(f.Kinds) > 0 {
		clauses = append(clauses, `e.kind IN (`+placeholders(len(f.Kinds))+`)`)
		for _, k := range f.Kinds {
			args = append(args, int(k))
		}
	}
	if f.Since != nil {
		clauses = append(clauses, `e.created_at >= ?`)
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		clauses = append(clauses, `e.created_at <= ?`)
		args = append(args, *f.Until)
	}
	if f.Search != "" {
		segmented := fts.Segment(f.Search)
		if segmented != "" {
			clauses = append(
				clauses,
				`e.id IN (SELECT id FROM events_fts WHERE events_fts MATCH ?)`,
			)
			args = append(args, segmented)
		}
	}
	for name, values := range f.Tags {
		if len(values) == 0 {
			continue
		}
		clauses = append(
			clauses,
			`e.id IN (SELECT event_id FROM tags WHERE name = ? AND value IN (`+
				placeholders(len(values))+`))`,
		)
		args = append(args, name)
		for _, v := range values {
			args = append(args, v)
		}
	}

	return compiled{where: strings.Join(clauses, " AND "), args: args}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
