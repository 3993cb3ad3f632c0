package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/task-api/internal/core/domain"
)

func userDoc(id primitive.ObjectID, tokens ...string) bson.D {
	toks := bson.A{}
	for _, t := range tokens {
		toks = append(toks, bson.D{{Key: "token", Value: t}})
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ana"},
		{Key: "email", Value: "ana@example.com"},
		{Key: "password", Value: "hash"},
		{Key: "tokens", Value: toks},
	}
}

func TestSessionFilter(t *testing.T) {
	id := primitive.NewObjectID()

	filter, err := sessionFilter(id.Hex(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": id, "tokens.token": "tok-1"}, filter)

	_, err = sessionFilter("not-hex", "tok-1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestPullTokenUpdate(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": "tok-2"}},
		"$set":  bson.M{"updatedAt": now},
	}, pullTokenUpdate("tok-2", now))
}

func TestUserRepository_FindByIDAndToken(t *testing.T) {
	mt := newMockT(t)

	mt.Run("matches id and literal token", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, userDoc(id, "tok-1", "tok-2")))

		user, err := repo.FindByIDAndToken(context.Background(), id.Hex(), "tok-2")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), user.ID)
		assert.Equal(mt, []string{"tok-1", "tok-2"}, user.Tokens)

		cmd := sentCommand(mt, "find")
		assert.Equal(mt, id, cmd.Lookup("filter", "_id").ObjectID())
		assert.Equal(mt, "tok-2", cmd.Lookup("filter", "tokens.token").StringValue())
	})

	mt.Run("revoked token finds nothing", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindByIDAndToken(context.Background(), primitive.NewObjectID().Hex(), "gone")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("malformed id sends no query", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}

		_, err := repo.FindByIDAndToken(context.Background(), "zz", "tok")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestUserRepository_Tokens(t *testing.T) {
	mt := newMockT(t)

	mt.Run("remove pulls a single token", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(okResponse(1))

		require.NoError(mt, repo.RemoveToken(context.Background(), id.Hex(), "tok-2"))

		cmd := sentCommand(mt, "update")
		assert.Equal(mt, id, cmd.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, "tok-2", cmd.Lookup("updates", "0", "u", "$pull", "tokens", "token").StringValue())
	})

	mt.Run("add pushes a token subdocument", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(okResponse(1))

		require.NoError(mt, repo.AddToken(context.Background(), primitive.NewObjectID().Hex(), "tok-3"))

		cmd := sentCommand(mt, "update")
		assert.Equal(mt, "tok-3", cmd.Lookup("updates", "0", "u", "$push", "tokens", "token").StringValue())
	})

	mt.Run("clear empties the session list", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(okResponse(1))

		require.NoError(mt, repo.ClearTokens(context.Background(), primitive.NewObjectID().Hex()))

		cmd := sentCommand(mt, "update")
		tokens, ok := cmd.Lookup("updates", "0", "u", "$set", "tokens").ArrayOK()
		require.True(mt, ok)
		values, err := tokens.Values()
		require.NoError(mt, err)
		assert.Empty(mt, values)
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(okResponse(0))

		err := repo.RemoveToken(context.Background(), primitive.NewObjectID().Hex(), "tok")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("assigns id", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.Create(context.Background(), &domain.User{Name: "Ana", Email: "ana@example.com", Tokens: []string{"tok"}})
		require.NoError(mt, err)
		assert.NotEmpty(mt, user.ID)
		assert.False(mt, user.CreatedAt.IsZero())

		cmd := sentCommand(mt, "insert")
		assert.Equal(mt, "ana@example.com", cmd.Lookup("documents", "0", "email").StringValue())
		assert.Equal(mt, "tok", cmd.Lookup("documents", "0", "tokens", "0", "token").StringValue())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		_, err := repo.Create(context.Background(), &domain.User{Name: "Ana", Email: "ana@example.com"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})
}

func TestUserRepository_Update(t *testing.T) {
	mt := newMockT(t)

	mt.Run("sets fields and unsets age", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: userDoc(id)}))

		name := "Bea"
		user, err := repo.Update(context.Background(), id.Hex(), domain.UserChanges{Name: &name, ClearAge: true})
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), user.ID)

		cmd := sentCommand(mt, "findAndModify")
		assert.Equal(mt, id, cmd.Lookup("query", "_id").ObjectID())
		assert.Equal(mt, "Bea", cmd.Lookup("update", "$set", "name").StringValue())
		_, err = cmd.LookupErr("update", "$unset", "age")
		assert.NoError(mt, err)
		assert.True(mt, cmd.Lookup("new").Boolean())
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		name := "Bea"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), domain.UserChanges{Name: &name})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	mt := newMockT(t)

	mt.Run("deleted", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(okResponse(1))

		require.NoError(mt, repo.Delete(context.Background(), id.Hex()))
		cmd := sentCommand(mt, "delete")
		assert.Equal(mt, id, cmd.Lookup("deletes", "0", "q", "_id").ObjectID())
	})

	mt.Run("nothing deleted", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(okResponse(0))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}
