package mongo

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/model"
	"github.com/tamy417/study-partner-server/internal/repository"
)

// Integration tests: they need a running server and are skipped otherwise.
//
//	MONGODB_URI=mongodb://localhost:27017 go test ./internal/repository/mongo/
func setupClient(t *testing.T) *Client {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := New(ctx, uri, "studyMateDB_test")
	require.NoError(t, err)

	// ensure clean collections in case previous runs left data
	_ = c.drop(ctx)
	require.NoError(t, c.CreateIndexes(ctx))

	t.Cleanup(func() {
		_ = c.drop(context.Background())
		_ = c.Close(context.Background())
	})
	return c
}

func TestPartnerStoreLifecycle(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	partners := c.Partners()

	p := &model.Partner{
		PartnerFields: model.PartnerFields{Name: "Ada", Subject: "Mathematics", Rating: 4.5, Email: "ada@example.com"},
	}
	ack, err := partners.Insert(ctx, p)
	require.NoError(t, err)
	assert.True(t, ack.Acknowledged)
	assert.Equal(t, p.ID.Hex(), ack.InsertedID)

	got, err := partners.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	res, err := partners.Replace(ctx, p.ID, model.PartnerFields{Name: "Ada L", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.EqualValues(t, 1, res.ModifiedCount)

	got, err = partners.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L", got.Name)
	assert.Empty(t, got.Subject)

	del, err := partners.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, del.DeletedCount)

	_, err = partners.FindByID(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	del, err = partners.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, del.DeletedCount)
}

func TestPartnerStoreSubjectFilter(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	partners := c.Partners()

	for _, subject := range []string{"Mathematics", "math basics", "Physics"} {
		_, err := partners.Insert(ctx, &model.Partner{PartnerFields: model.PartnerFields{Subject: subject}})
		require.NoError(t, err)
	}

	got, err := partners.Find(ctx, repository.PartnerQuery{SubjectContains: "Math"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.NotEqual(t, "Physics", p.Subject)
	}
}

func TestPartnerStoreConcurrentIncrement(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	partners := c.Partners()

	p := &model.Partner{PartnerFields: model.PartnerFields{Name: "Grace"}}
	_, err := partners.Insert(ctx, p)
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := partners.IncrementPartnerCount(ctx, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := partners.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.PartnerCount)
}

func TestRequestStoreMerge(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	requests := c.Requests()

	req := &model.Request{PartnerID: bson.NewObjectID().Hex(), UserEmail: "u@example.com", Status: "pending", Message: "hi"}
	_, err := requests.Insert(ctx, req)
	require.NoError(t, err)

	status := "accepted"
	res, err := requests.Merge(ctx, req.ID, model.RequestPatch{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ModifiedCount)

	got, err := requests.FindByUserEmail(ctx, "u@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "accepted", got[0].Status)
	assert.Equal(t, "hi", got[0].Message)
}
