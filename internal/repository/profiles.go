package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// ProfilesRepository writes admin profile documents keyed by account uid.
type ProfilesRepository interface {
	// Put creates or fully overwrites users/{uid}.
	Put(ctx context.Context, p model.AdminProfile) error
}

type ProfilesRepositoryImpl struct {
	fs   *firestore.Client
	coll string
}

func NewProfilesRepository(fs *firestore.Client, collection string) *ProfilesRepositoryImpl {
	if collection == "" {
		collection = "users"
	}
	return &ProfilesRepositoryImpl{fs: fs, coll: collection}
}

var _ ProfilesRepository = (*ProfilesRepositoryImpl)(nil)

// Put leaves CreatedAt/LastLogin zero so that the serverTimestamp tag fills them with commit time.
func (r *ProfilesRepositoryImpl) Put(ctx context.Context, p model.AdminProfile) error {
	if _, err := r.fs.Collection(r.coll).Doc(p.UID).Set(ctx, p); err != nil {
		return classify("write profile "+p.UID, err)
	}
	return nil
}
