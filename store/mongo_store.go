package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cppla/postboard/models"
)

const (
	usersCollection         = "users"
	postsCollection         = "posts"
	commentsCollection      = "comments"
	refreshTokensCollection = "refresh_tokens"
)

// MongoStore implements Store on MongoDB. Documents use the same string ids as the SQL store.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	tokens   *mongo.Collection
}

// NewMongoStore connects to uri, selects database and ensures the indexes the store relies on.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
		tokens:   db.Collection(refreshTokensCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("posts user index: %w", err)
	}
	if _, err := s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("comments post index: %w", err)
	}
	if _, err := s.tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		// Mongo's TTL monitor drops expired refresh tokens
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}); err != nil {
		return fmt.Errorf("refresh token indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

var byCreated = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	user.PrepareCreate(time.Now())
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", mongoErr(err))
	}
	return nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (s *MongoStore) CreatePost(ctx context.Context, post *models.Post) error {
	post.PrepareCreate(time.Now())
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", mongoErr(err))
	}
	return nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	return findAll[models.Post](ctx, s.posts, bson.M{})
}

func (s *MongoStore) ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return findAll[models.Post](ctx, s.posts, bson.M{"userId": userID})
}

func (s *MongoStore) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mongoErr(err)
	}
	return &post, nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	return updateContent(ctx, s.posts, post.ID, post.Content, post.UpdatedAt)
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	return deleteOne(ctx, s.posts, id)
}

func (s *MongoStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.PrepareCreate(time.Now())
	if _, err := s.comments.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("create comment: %w", mongoErr(err))
	}
	return nil
}

func (s *MongoStore) ListComments(ctx context.Context) ([]models.Comment, error) {
	return findAll[models.Comment](ctx, s.comments, bson.M{})
}

func (s *MongoStore) ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return findAll[models.Comment](ctx, s.comments, bson.M{"postId": postID})
}

func (s *MongoStore) FindCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mongoErr(err)
	}
	return &comment, nil
}

func (s *MongoStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	return updateContent(ctx, s.comments, comment.ID, comment.Content, comment.UpdatedAt)
}

func (s *MongoStore) DeleteComment(ctx context.Context, id string) error {
	return deleteOne(ctx, s.comments, id)
}

func (s *MongoStore) DeleteCommentsByPost(ctx context.Context, postID string) error {
	if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": postID}); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	if _, err := s.tokens.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("save refresh token: %w", mongoErr(err))
	}
	return nil
}

func (s *MongoStore) ConsumeRefreshToken(ctx context.Context, userID, tokenID string) (bool, error) {
	filter := bson.M{
		"_id":       tokenID,
		"userId":    userID,
		"expiresAt": bson.M{"$gt": time.Now()},
	}
	err := s.tokens.FindOneAndDelete(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return true, nil
}

func (s *MongoStore) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	if _, err := s.tokens.DeleteOne(ctx, bson.M{"_id": tokenID}); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *MongoStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	if _, err := s.tokens.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter, byCreated)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func updateContent(ctx context.Context, coll *mongo.Collection, id, content string, at time.Time) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"content": content, "updatedAt": at}})
	if err != nil {
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
