package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Username  string             `bson:"username"`
	Phone     string             `bson:"phone"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *userDoc) entity() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		Phone:        d.Phone,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc := userDoc{
		Email:     u.Email,
		Username:  u.Username,
		Phone:     u.Phone,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, mapReadError(err)
	}
	return doc.entity(), nil
}

func (r *UserRepository) exists(ctx context.Context, field, value string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{field: value}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone", phone)
}

var _ repository.UserRepository = (*UserRepository)(nil)
