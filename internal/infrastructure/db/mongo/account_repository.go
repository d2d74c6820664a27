package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

const collectionUsers = "users"

type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionUsers)}
}

type mongoExperience struct {
	Company     string     `bson:"company"`
	Position    string     `bson:"position"`
	StartDate   *time.Time `bson:"start_date,omitempty"`
	EndDate     *time.Time `bson:"end_date"`
	Description string     `bson:"description,omitempty"`
	IsCurrent   bool       `bson:"is_current"`
}

type mongoEducation struct {
	Institution  string     `bson:"institution"`
	Degree       string     `bson:"degree"`
	FieldOfStudy string     `bson:"field_of_study,omitempty"`
	StartDate    *time.Time `bson:"start_date,omitempty"`
	EndDate      *time.Time `bson:"end_date"`
	Description  string     `bson:"description,omitempty"`
}

type mongoCreator struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

type mongoAccount struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	Name             string              `bson:"name"`
	LastName         string              `bson:"last_name"`
	Email            string              `bson:"email"`
	PasswordHash     string              `bson:"password_hash"`
	Bio              string              `bson:"bio,omitempty"`
	Role             string              `bson:"role"`
	IsActive         bool                `bson:"is_active"`
	MobileNumber     string              `bson:"mobile_number"`
	PermanentAddress string              `bson:"permanent_address"`
	CurrentPosition  string              `bson:"current_position"`
	Experience       []mongoExperience   `bson:"experience"`
	Education        []mongoEducation    `bson:"education"`
	ProfileImage     string              `bson:"profile_image,omitempty"`
	CreatedBy        *primitive.ObjectID `bson:"created_by,omitempty"`
	CreatedAt        time.Time           `bson:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at"`

	// Creator is populated by the $lookup stage only; never written.
	Creator []mongoCreator `bson:"creator,omitempty"`
}

// EnsureIndexes creates the unique email index and the listing sort index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves an account with its creator resolved. Malformed ids are
// reported as not found.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}, creatorLookup()...)
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		return nil, domain.ErrAccountNotFound
	}

	var doc mongoAccount
	if err := cur.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc, err := fromDomain(account)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies a sparse $set built from the non-nil fields of u.
func (r *AccountRepository) Update(ctx context.Context, id string, u ports.AccountUpdate, now time.Time) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updateSet(u, now)})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List returns every account newest first, creators resolved.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}}}, creatorLookup()...)
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		accounts = append(accounts, docs[i].toDomain())
	}
	return accounts, nil
}

// creatorLookup joins the creating account as a single-element "creator" array,
// projected down to id, name and email.
func creatorLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "created_by"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creator"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}}}},
			}},
		}}},
	}
}

func updateSet(u ports.AccountUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.LastName != nil {
		set["last_name"] = *u.LastName
	}
	if u.Bio != nil {
		set["bio"] = *u.Bio
	}
	if u.Role != nil {
		set["role"] = string(*u.Role)
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.MobileNumber != nil {
		set["mobile_number"] = *u.MobileNumber
	}
	if u.PermanentAddress != nil {
		set["permanent_address"] = *u.PermanentAddress
	}
	if u.CurrentPosition != nil {
		set["current_position"] = *u.CurrentPosition
	}
	if u.Experience != nil {
		set["experience"] = experienceDocs(*u.Experience)
	}
	if u.Education != nil {
		set["education"] = educationDocs(*u.Education)
	}
	if u.ProfileImage != nil {
		set["profile_image"] = *u.ProfileImage
	}
	return set
}

func fromDomain(a *domain.Account) (*mongoAccount, error) {
	doc := &mongoAccount{
		Name:             a.Name,
		LastName:         a.LastName,
		Email:            a.Email,
		PasswordHash:     a.PasswordHash,
		Bio:              a.Bio,
		Role:             string(a.Role),
		IsActive:         a.IsActive,
		MobileNumber:     a.MobileNumber,
		PermanentAddress: a.PermanentAddress,
		CurrentPosition:  a.CurrentPosition,
		Experience:       experienceDocs(a.Experience),
		Education:        educationDocs(a.Education),
		ProfileImage:     a.ProfileImage,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.CreatedBy != "" {
		oid, err := primitive.ObjectIDFromHex(a.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("invalid creator id %q: %w", a.CreatedBy, err)
		}
		doc.CreatedBy = &oid
	}
	return doc, nil
}

func (d *mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		LastName:         d.LastName,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Bio:              d.Bio,
		Role:             domain.Role(d.Role),
		IsActive:         d.IsActive,
		MobileNumber:     d.MobileNumber,
		PermanentAddress: d.PermanentAddress,
		CurrentPosition:  d.CurrentPosition,
		Experience:       make([]domain.Experience, 0, len(d.Experience)),
		Education:        make([]domain.Education, 0, len(d.Education)),
		ProfileImage:     d.ProfileImage,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	if d.CreatedBy != nil {
		a.CreatedBy = d.CreatedBy.Hex()
	}
	if len(d.Creator) > 0 {
		c := d.Creator[0]
		a.Creator = &domain.AccountSummary{ID: c.ID.Hex(), Name: c.Name, Email: c.Email}
	}
	for _, e := range d.Experience {
		a.Experience = append(a.Experience, domain.Experience{
			Company:     e.Company,
			Position:    e.Position,
			StartDate:   dateFrom(e.StartDate),
			EndDate:     dateFrom(e.EndDate),
			Description: e.Description,
			IsCurrent:   e.IsCurrent,
		})
	}
	for _, e := range d.Education {
		a.Education = append(a.Education, domain.Education{
			Institution:  e.Institution,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			StartDate:    dateFrom(e.StartDate),
			EndDate:      dateFrom(e.EndDate),
			Description:  e.Description,
		})
	}
	return a
}

func experienceDocs(in []domain.Experience) []mongoExperience {
	out := make([]mongoExperience, 0, len(in))
	for _, e := range in {
		out = append(out, mongoExperience{
			Company:     e.Company,
			Position:    e.Position,
			StartDate:   e.StartDate.TimePtr(),
			EndDate:     e.EndDate.TimePtr(),
			Description: e.Description,
			IsCurrent:   e.IsCurrent,
		})
	}
	return out
}

func educationDocs(in []domain.Education) []mongoEducation {
	out := make([]mongoEducation, 0, len(in))
	for _, e := range in {
		out = append(out, mongoEducation{
			Institution:  e.Institution,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			StartDate:    e.StartDate.TimePtr(),
			EndDate:      e.EndDate.TimePtr(),
			Description:  e.Description,
		})
	}
	return out
}

func dateFrom(t *time.Time) *domain.Date {
	if t == nil {
		return nil
	}
	return domain.NewDate(*t)
}
