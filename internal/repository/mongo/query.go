package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tamy417/study-partner-server/internal/repository"
)

// findSpec is a compiled PartnerQuery: the filter document plus the
// sort/limit that become find options.
type findSpec struct {
	filter bson.D
	sort   bson.D
	limit  int64
}

// compilePartnerQuery turns a PartnerQuery into Mongo query documents.
//
// The subject substring is escaped with regexp.QuoteMeta so "C++" matches
// literally instead of being read as a regex. The "i" option makes it
// case-insensitive.
func compilePartnerQuery(q repository.PartnerQuery) findSpec {
	filter := bson.D{}
	if q.SubjectContains != "" {
		filter = append(filter, bson.E{
			Key:   "subject",
			Value: bson.Regex{Pattern: regexp.QuoteMeta(q.SubjectContains), Options: "i"},
		})
	}
	if q.Email != "" {
		filter = append(filter, bson.E{Key: "email", Value: q.Email})
	}

	var sort bson.D
	for _, key := range q.Sort {
		sort = append(sort, bson.E{Key: key.Field, Value: int32(key.Order)})
	}

	return findSpec{filter: filter, sort: sort, limit: q.Limit}
}

func (f findSpec) findOptions() *options.FindOptionsBuilder {
	opts := options.Find()
	if len(f.sort) > 0 {
		opts.SetSort(f.sort)
	}
	if f.limit > 0 {
		opts.SetLimit(f.limit)
	}
	return opts
}
