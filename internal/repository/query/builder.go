package query

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// operator prefixes accepted in filter values, e.g. year=gte:2020
const (
	opGT = "gt:"
	opGE = "gte:"
	opLT = "lt:"
	opLE = "lte:"
	opIn = "in:"
	opRe = "re:"
)

// Builder accumulates a Mongo filter document.
type Builder struct {
	filter bson.M
}

func NewBuilder() *Builder {
	return &Builder{filter: bson.M{}}
}

func (b *Builder) Where(key string, value any) *Builder {
	b.filter[key] = value
	return b
}

func (b *Builder) WhereIn(key string, values []string) *Builder {
	b.filter[key] = bson.M{"$in": values}
	return b
}

func (b *Builder) WhereRegex(key, pattern string) *Builder {
	b.filter[key] = bson.M{"$regex": pattern, "$options": "i"}
	return b
}

func (b *Builder) WhereGT(key string, value any) *Builder {
	b.filter[key] = bson.M{"$gt": value}
	return b
}

func (b *Builder) WhereGTE(key string, value any) *Builder {
	b.filter[key] = bson.M{"$gte": value}
	return b
}

func (b *Builder) WhereLT(key string, value any) *Builder {
	b.filter[key] = bson.M{"$lt": value}
	return b
}

func (b *Builder) WhereLTE(key string, value any) *Builder {
	b.filter[key] = bson.M{"$lte": value}
	return b
}

func (b *Builder) Build() bson.M {
	return b.filter
}

// BuildFilter translates the query's filter terms into a Mongo filter,
// interpreting the operator prefixes on each value.
func BuildFilter(q Query) bson.M {
	b := NewBuilder()
	for key, raw := range q.Filter {
		switch {
		case strings.HasPrefix(raw, opGE):
			b.WhereGTE(key, numberOrString(raw[len(opGE):]))
		case strings.HasPrefix(raw, opGT):
			b.WhereGT(key, numberOrString(raw[len(opGT):]))
		case strings.HasPrefix(raw, opLE):
			b.WhereLTE(key, numberOrString(raw[len(opLE):]))
		case strings.HasPrefix(raw, opLT):
			b.WhereLT(key, numberOrString(raw[len(opLT):]))
		case strings.HasPrefix(raw, opIn):
			b.WhereIn(key, strings.Split(raw[len(opIn):], "|"))
		case strings.HasPrefix(raw, opRe):
			pattern := raw[len(opRe):]
			if _, err := regexp.Compile(pattern); err == nil {
				b.WhereRegex(key, pattern)
			} else {
				b.Where(key, raw)
			}
		default:
			b.Where(key, raw)
		}
	}
	return b.Build()
}

// BuildSort translates the requested sort into a Mongo sort document.
// Default order is creation time, and an _id tiebreaker is always appended
// so repeated identical queries return records in the same order.
func BuildSort(q Query) bson.D {
	sort := bson.D{}
	seenId := false
	for _, s := range q.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
		if s.Field == "_id" {
			seenId = true
		}
	}
	if len(sort) == 0 {
		sort = append(sort, bson.E{Key: "createdAt", Value: 1})
	}
	if !seenId {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

func numberOrString(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
