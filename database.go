// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tastelist

import (
	"log/slog"
	"time"

	"github.com/poiesic/tastelist/repository"
	"github.com/poiesic/tastelist/store"
	"github.com/poiesic/tastelist/store/badger"
	"github.com/poiesic/tastelist/verify"
)

// Database wires the badger store and the four repositories together.
// It is the entry point for embedding applications.
type Database struct {
	backend     *badger.Backend
	store       *badger.Store
	users       *repository.UserRepository
	boards      *repository.BoardRepository
	categories  *repository.CategoryRepository
	restaurants *repository.RestaurantRepository
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger   *slog.Logger
	clock    func() time.Time
	location *time.Location
	inMemory bool
}

// WithDatabaseLogger sets the logger shared by the repositories.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDatabaseClock overrides the clock used to stamp user activity.
func WithDatabaseClock(clock func() time.Time) DatabaseOption {
	return func(o *databaseOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDatabaseLocation sets the timezone for user activity dates.
// Default is UTC.
func WithDatabaseLocation(loc *time.Location) DatabaseOption {
	return func(o *databaseOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithInMemory opens the store in memory with no files on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	st := badger.NewStore(backend)

	boards := repository.NewBoardRepository(st)
	categories := repository.NewCategoryRepository(st)
	restaurants := repository.NewRestaurantRepository(st)

	userOpts := []repository.UserOption{
		repository.WithUserLogger(options.logger),
	}
	if options.clock != nil {
		userOpts = append(userOpts, repository.WithClock(options.clock))
	}
	if options.location != nil {
		userOpts = append(userOpts, repository.WithLocation(options.location))
	}
	users := repository.NewUserRepository(st, boards, userOpts...)

	return &Database{
		backend:     backend,
		store:       st,
		users:       users,
		boards:      boards,
		categories:  categories,
		restaurants: restaurants,
		logger:      options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Store exposes the raw path-addressed store.
func (db *Database) Store() store.Store {
	return db.store
}

func (db *Database) Users() *repository.UserRepository {
	return db.users
}

func (db *Database) Boards() *repository.BoardRepository {
	return db.boards
}

func (db *Database) Categories() *repository.CategoryRepository {
	return db.categories
}

func (db *Database) Restaurants() *repository.RestaurantRepository {
	return db.restaurants
}

// NewVerifier builds an integrity verifier over this database's store.
func (db *Database) NewVerifier(opts ...verify.Option) (*verify.Verifier, error) {
	base := []verify.Option{verify.WithLogger(db.logger)}
	return verify.NewVerifier(db.store, append(base, opts...)...)
}
