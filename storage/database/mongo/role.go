package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
)

const roleCollection = "roles"

type roleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Permissions []string           `bson:"permissions"`
}

func (d roleDoc) toRole() role.Role {
	return role.Role{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Permissions: d.Permissions,
	}
}

type roleRepository struct {
	col *mongo.Collection
}

var _ role.Repository = (*roleRepository)(nil) // interface compliance check

func NewRoleRepository(db *mongo.Database) role.Repository {
	col := db.Collection(roleCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &roleRepository{col: col}
}

func (repo *roleRepository) CreateRole(ctx context.Context, rl role.Role) (role.Role, error) {
	doc := roleDoc{
		ID:          primitive.NewObjectID(),
		Name:        rl.Name,
		Description: rl.Description,
		Permissions: rl.Permissions,
	}
	if _, err := repo.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return role.Role{}, role.ErrNameExists
		}
		return role.Role{}, errors.Wrap(core.NewUnavailableError(err), "creating role")
	}
	return doc.toRole(), nil
}

func (repo *roleRepository) QueryAllRoles(ctx context.Context) ([]role.Role, error) {
	cursor, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(core.NewUnavailableError(err), "querying roles")
	}
	defer cursor.Close(ctx)

	var docs []roleDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(core.NewUnavailableError(err), "decoding roles")
	}
	roles := make([]role.Role, 0, len(docs))
	for _, doc := range docs {
		roles = append(roles, doc.toRole())
	}
	return roles, nil
}

func (repo *roleRepository) GetRoleByName(ctx context.Context, name string) (role.Role, error) {
	var doc roleDoc
	if err := repo.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return role.Role{}, role.ErrNotFound
		}
		return role.Role{}, errors.Wrap(core.NewUnavailableError(err), "getting role")
	}
	return doc.toRole(), nil
}

func (repo *roleRepository) UpdateRole(ctx context.Context, rl role.Role) (role.Role, error) {
	oid, err := primitive.ObjectIDFromHex(rl.ID)
	if err != nil {
		return role.Role{}, role.ErrNotFound
	}

	var doc roleDoc
	err = repo.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"name":        rl.Name,
			"description": rl.Description,
			"permissions": rl.Permissions,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return role.Role{}, role.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return role.Role{}, role.ErrNameExists
		}
		return role.Role{}, errors.Wrap(core.NewUnavailableError(err), "updating role")
	}
	return doc.toRole(), nil
}

func (repo *roleRepository) DeleteRole(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return role.ErrNotFound
	}
	res, err := repo.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(core.NewUnavailableError(err), "deleting role")
	}
	if res.DeletedCount == 0 {
		return role.ErrNotFound
	}
	return nil
}
