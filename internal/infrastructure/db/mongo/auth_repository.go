package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
	"github.com/peliculas/catalog-api/internal/infrastructure/auth"
)

const (
	usersCollection = "users"
	rolesCollection = "roles"
)

// UserRepository implements ports.UserStore on the users and roles collections.
type UserRepository struct {
	users  *mongo.Collection
	roles  *mongo.Collection
	hasher ports.PasswordHasher
	policy auth.PasswordPolicy
}

func NewUserRepository(db *mongo.Database, hasher ports.PasswordHasher, policy auth.PasswordPolicy) *UserRepository {
	return &UserRepository{
		users:  db.Collection(usersCollection),
		roles:  db.Collection(rolesCollection),
		hasher: hasher,
		policy: policy,
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	UsernameKey  string             `bson:"username_key"`
	Name         string             `bson:"name"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	CreatedAt    int64              `bson:"created_at"`
}

type mongoRole struct {
	Name      string `bson:"name"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *UserRepository) CreateIdentity(ctx context.Context, username, plaintext, name string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	verr := &domain.ValidationError{}
	if username == "" {
		verr.Add("username", "username is required")
	}
	verr.Fields = append(verr.Fields, r.policy.Check(plaintext)...)
	if verr.HasErrors() {
		return nil, verr
	}

	hash, err := r.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameKey:  domain.NormalizeUsername(username),
		Name:         name,
		PasswordHash: hash,
		Roles:        []string{},
		CreatedAt:    time.Now().UTC().Unix(),
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewValidationError("username", fmt.Sprintf("username '%s' is already taken", username))
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) DeleteIdentity(ctx context.Context, user *domain.User) error {
	oid, err := objectID(user.ID, domain.ResourceUser)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.users.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username_key": domain.NormalizeUsername(username)}, username)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id, domain.ResourceUser)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username_key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) VerifyPassword(user *domain.User, plaintext string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return r.hasher.Check(plaintext, user.PasswordHash)
}

// RolesOf reads the roles from the store rather than trusting user.Roles.
func (r *UserRepository) RolesOf(ctx context.Context, user *domain.User) ([]string, error) {
	fresh, err := r.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return fresh.Roles, nil
}

func (r *UserRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.roles.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("role exists: %w", err)
	}
	return n > 0, nil
}

// CreateRole upserts the role; the unique index on name absorbs racing
// creators.
func (r *UserRepository) CreateRole(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.roles.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": mongoRole{Name: name, CreatedAt: time.Now().UTC().Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *UserRepository) AssignRole(ctx context.Context, user *domain.User, name string) error {
	oid, err := objectID(user.ID, domain.ResourceUser)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$addToSet": bson.M{"roles": name}})
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceUser, ID: user.ID}
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, ref string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceUser, ID: ref}
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (mu *mongoUser) toDomain() *domain.User {
	roles := mu.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Name:         mu.Name,
		PasswordHash: mu.PasswordHash,
		Roles:        roles,
		CreatedAt:    unixToTime(mu.CreatedAt),
	}
}

func ensureUserIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if _, err := db.Collection(rolesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("roles indexes: %w", err)
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
