package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	collectionOrders        = "orders"
	collectionTickets       = "tickets"
	collectionExchangeCodes = "exchange_codes"
	collectionPerformances  = "performances"
	collectionNews          = "news"
	collectionAdmins        = "admins"
)

// Store maps PocketBase records of the ticketing collections to models.
// A Store created inside RunInTransaction reads and writes through the
// transaction.
type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) App() core.App {
	return s.app
}

func (s *Store) RunInTransaction(fn func(tx *Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&Store{app: txApp})
	})
}

func (s *Store) newRecord(collection string) (*core.Record, error) {
	c, err := s.app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, err
	}
	return core.NewRecord(c), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func timePtr(dt types.DateTime) *time.Time {
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func setTime(r *core.Record, field string, t *time.Time) {
	if t == nil {
		r.Set(field, "")
		return
	}
	r.Set(field, *t)
}
