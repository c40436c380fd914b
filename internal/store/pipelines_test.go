package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stageNames(p []bson.D) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestPendingFirstPipelinePagesAfterRanking(t *testing.T) {
	p := pendingFirstPipeline(bson.M{}, 20, 10)
	assert.Equal(t,
		[]string{"$match", "$addFields", "$sort", "$skip", "$limit", "$project"},
		stageNames(p))

	sort := p[2][0].Value.(bson.D)
	assert.Equal(t, "pendingRank", sort[0].Key)
	assert.Equal(t, "_id", sort[1].Key)
}

func TestPendingFirstPipelineWithoutPaging(t *testing.T) {
	p := pendingFirstPipeline(bson.M{}, 0, 0)
	assert.Equal(t, []string{"$match", "$addFields", "$sort", "$project"}, stageNames(p))
}

func TestSearchFilterEscapesInput(t *testing.T) {
	assert.Empty(t, searchFilter(""))

	single := searchFilter("a.b", "name")
	re, ok := single["name"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.b`, re.Pattern)
	assert.Equal(t, "i", re.Options)

	multi := searchFilter("017", "name", "phone")
	or, ok := multi["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
}

func TestMonthlyPipelineCoversCalendarYear(t *testing.T) {
	p := monthlyPipeline(2024)
	match := p[0][0].Value.(bson.M)["bookingTime"].(bson.M)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), match["$gte"])
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), match["$lt"])
}

func TestDecimalZeroIsZero(t *testing.T) {
	assert.Equal(t, "0", decimalZero.String())
}
