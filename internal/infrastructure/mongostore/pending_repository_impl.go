package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

type pendingDoc struct {
	Email      string    `bson:"email"`
	Username   string    `bson:"username"`
	Phone      string    `bson:"phone"`
	Passphrase string    `bson:"passphrase"`
	CreatedAt  time.Time `bson:"createdAt"`
}

type PendingRegistrationRepository struct {
	coll *mongo.Collection
}

func NewPendingRegistrationRepository(db *mongo.Database) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{coll: db.Collection(PendingCollection)}
}

func (r *PendingRegistrationRepository) Create(ctx context.Context, p *entity.PendingRegistration) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, pendingDoc{
		Email:      p.Email,
		Username:   p.Username,
		Phone:      p.Phone,
		Passphrase: p.Passphrase,
		CreatedAt:  p.CreatedAt,
	})
	return mapWriteError(err)
}

func (r *PendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (*entity.PendingRegistration, error) {
	var doc pendingDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mapReadError(err)
	}
	return &entity.PendingRegistration{
		Email:      doc.Email,
		Username:   doc.Username,
		Phone:      doc.Phone,
		Passphrase: doc.Passphrase,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (r *PendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}

// DeleteCreatedBefore covers the window before the TTL monitor runs.
func (r *PendingRegistrationRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *PendingRegistrationRepository) exists(ctx context.Context, field, value string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{field: value}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PendingRegistrationRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *PendingRegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *PendingRegistrationRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone", phone)
}

var _ repository.PendingRegistrationRepository = (*PendingRegistrationRepository)(nil)
