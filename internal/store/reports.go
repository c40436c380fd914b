package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var decimalZero = primitive.NewDecimal128(0x3040000000000000, 0)

var revenuePipeline = mongo.Pipeline{
	{{Key: "$unwind", Value: "$payment"}},
	{{Key: "$group", Value: bson.M{
		"_id": nil,
		"total": bson.M{"$sum": bson.M{"$convert": bson.M{
			"input":   "$payment.amount",
			"to":      "decimal",
			"onError": decimalZero,
			"onNull":  decimalZero,
		}}},
	}}},
}

func (s *MongoOrderStore) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	cur, err := s.coll.Aggregate(ctx, revenuePipeline)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "aggregate revenue")
	}
	var rows []struct {
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode revenue")
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	total, err := decimal.NewFromString(rows[0].Total.String())
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse revenue")
	}
	return total, nil
}

// CountBookedBetween counts orders with from < bookingTime <= to.
func (s *MongoOrderStore) CountBookedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"bookingTime": bson.M{"$gt": from, "$lte": to}})
	if err != nil {
		return 0, errors.Wrap(err, "count bookings")
	}
	return n, nil
}

func monthlyPipeline(year int) mongo.Pipeline {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookingTime": bson.M{"$gte": start, "$lt": start.AddDate(1, 0, 0)}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$month": "$bookingTime"},
			"count": bson.M{"$sum": 1},
		}}},
	}
}

// MonthlyBookings returns the number of orders booked in each UTC month of year.
func (s *MongoOrderStore) MonthlyBookings(ctx context.Context, year int) ([12]int64, error) {
	var months [12]int64
	cur, err := s.coll.Aggregate(ctx, monthlyPipeline(year))
	if err != nil {
		return months, errors.Wrap(err, "aggregate monthly bookings")
	}
	var rows []struct {
		Month int   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return months, errors.Wrap(err, "decode monthly bookings")
	}
	for _, r := range rows {
		if r.Month >= 1 && r.Month <= 12 {
			months[r.Month-1] = r.Count
		}
	}
	return months, nil
}

func (s *MongoOrderStore) CountLatestStateNot(ctx context.Context, state string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"$expr": bson.M{"$ne": bson.A{latestState, state}},
	})
	if err != nil {
		return 0, errors.Wrap(err, "count by latest state")
	}
	return n, nil
}

var categoryPipeline = mongo.Pipeline{
	{{Key: "$group", Value: bson.M{
		"_id":   bson.M{"$ifNull": bson.A{"$categoryType", "$category"}},
		"count": bson.M{"$sum": 1},
	}}},
}

func (s *MongoOrderStore) CountByCategoryType(ctx context.Context) (map[string]int64, error) {
	cur, err := s.coll.Aggregate(ctx, categoryPipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate categories")
	}
	var rows []struct {
		CategoryType string `bson:"_id"`
		Count        int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.CategoryType] += r.Count
	}
	return out, nil
}
