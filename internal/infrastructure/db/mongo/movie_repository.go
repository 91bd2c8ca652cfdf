package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

const collectionMovies = "movies"

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{col: db.Collection(collectionMovies)}
}

type mongoMovie struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	NameKey        string             `bson:"name_key"`
	Description    string             `bson:"description"`
	Duration       int                `bson:"duration"`
	Classification string             `bson:"classification"`
	CategoryID     string             `bson:"category_id"`
	Images         []domain.ImageSlot `bson:"images"`
	CreatedAt      time.Time          `bson:"created_at"`
}

var byName = bson.D{{Key: "name", Value: 1}}

// NewID returns a fresh ObjectID in hex form.
func (r *MovieRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := objectID(id, domain.ResourceMovie)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoMovie
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceMovie, ID: id}
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns movies sorted by name. limit <= 0 returns everything after skip.
func (r *MovieRepository) List(ctx context.Context, skip, limit int64) ([]*domain.Movie, error) {
	opts := options.Find().SetSort(byName)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

// Search matches term literally inside name or description.
func (r *MovieRepository) Search(ctx context.Context, term string) ([]*domain.Movie, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term)}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}
	return r.find(ctx, filter, options.Find().SetSort(byName))
}

func (r *MovieRepository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Movie, error) {
	return r.find(ctx, bson.M{"category_id": categoryID}, options.Find().SetSort(byName))
}

func (r *MovieRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	filter := bson.M{"name_key": domain.NameKey(name)}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}
	return n > 0, nil
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	doc, err := newMongoMovie(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewValidationError("name", "movie already exists")
		}
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	doc, err := newMongoMovie(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewValidationError("name", "movie already exists")
		}
		return fmt.Errorf("update movie: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceMovie, ID: m.ID}
	}
	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ResourceMovie)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceMovie, ID: id}
	}
	return nil
}

func (r *MovieRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	var docs []mongoMovie
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	out := make([]*domain.Movie, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func newMongoMovie(m *domain.Movie) (*mongoMovie, error) {
	oid, err := primitive.ObjectIDFromHex(m.ID)
	if err != nil {
		return nil, fmt.Errorf("movie id %q: %w", m.ID, err)
	}
	images := m.Images
	if images == nil {
		images = []domain.ImageSlot{}
	}
	return &mongoMovie{
		ID:             oid,
		Name:           m.Name,
		NameKey:        domain.NameKey(m.Name),
		Description:    m.Description,
		Duration:       m.Duration,
		Classification: string(m.Classification),
		CategoryID:     m.CategoryID,
		Images:         images,
		CreatedAt:      m.CreatedAt.UTC(),
	}, nil
}

func (d *mongoMovie) toDomain() *domain.Movie {
	images := d.Images
	if images == nil {
		images = []domain.ImageSlot{}
	}
	return &domain.Movie{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Description:    d.Description,
		Duration:       d.Duration,
		Classification: domain.Classification(d.Classification),
		CategoryID:     d.CategoryID,
		Images:         images,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

func ensureMovieIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
	}

	if _, err := db.Collection(collectionMovies).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("movies indexes: %w", err)
	}
	return nil
}
