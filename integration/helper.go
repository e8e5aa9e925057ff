package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/iyhunko/product-catalog/internal/config"
	repomongo "github.com/iyhunko/product-catalog/internal/repository/mongo"
	reposql "github.com/iyhunko/product-catalog/internal/repository/sql"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const containerExpiry = 120

// newPool connects to the local Docker daemon, skipping the test when none is available.
func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Docker is not available: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}
	pool.MaxWait = 120 * time.Second
	return pool
}

func runContainer(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Expire containers so an aborted run does not leave them behind.
	if err := resource.Expire(containerExpiry); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}
	return resource
}

// TestDB holds a migrated PostgreSQL connection running in a container.
type TestDB struct {
	DB       *sql.DB
	Config   config.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB starts a PostgreSQL container and applies the product migrations through StartDB.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool := newPool(t)
	resource := runContainer(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	})

	dbConf := config.DB{
		Host:           resource.GetBoundIP("5432/tcp"),
		Port:           resource.GetPort("5432/tcp"),
		User:           "testuser",
		Password:       "secret",
		Name:           "testdb",
		ConnectTimeout: 5 * time.Second,
	}
	databaseURL := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		dbConf.User, dbConf.Password, resource.GetHostPort("5432/tcp"), dbConf.Name)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	if err := pool.Retry(func() error {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Could not connect to docker: %s", err)
	}

	db, err := reposql.StartDB(context.Background(), dbConf)
	if err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Could not start database: %s", err)
	}

	return &TestDB{
		DB:       db,
		Config:   dbConf,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateProducts removes every product row.
func (tdb *TestDB) TruncateProducts(t *testing.T) {
	t.Helper()

	if _, err := tdb.DB.ExecContext(context.Background(), "TRUNCATE TABLE products"); err != nil {
		t.Fatalf("Could not truncate table products: %s", err)
	}
}

// TestMongo holds a client connected to a MongoDB container.
type TestMongo struct {
	Client   *mongo.Client
	Config   config.Mongo
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestMongo starts a MongoDB container and connects to it through the repository's Connect.
func SetupTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	pool := newPool(t)
	resource := runContainer(t, pool, &dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	})

	mongoConf := config.Mongo{
		URI:            fmt.Sprintf("mongodb://%s/ProductsDB", resource.GetHostPort("27017/tcp")),
		Database:       "ProductsDB",
		Collection:     "products",
		ConnectTimeout: 2 * time.Second,
	}

	log.Println("Connecting to mongo on url: ", mongoConf.URI)

	var client *mongo.Client
	if err := pool.Retry(func() error {
		var err error
		client, err = repomongo.Connect(context.Background(), mongoConf)
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Could not connect to mongo: %s", err)
	}

	return &TestMongo{
		Client:   client,
		Config:   mongoConf,
		Pool:     pool,
		Resource: resource,
	}
}

// Collection returns the configured products collection.
func (tm *TestMongo) Collection() *mongo.Collection {
	return tm.Client.Database(tm.Config.Database).Collection(tm.Config.Collection)
}

// DropProducts removes every product document.
func (tm *TestMongo) DropProducts(t *testing.T) {
	t.Helper()

	if _, err := tm.Collection().DeleteMany(context.Background(), bson.D{}); err != nil {
		t.Fatalf("Could not clear products: %s", err)
	}
}

// Cleanup disconnects the client and purges the Docker container.
func (tm *TestMongo) Cleanup(t *testing.T) {
	t.Helper()

	if tm.Client != nil {
		if err := tm.Client.Disconnect(context.Background()); err != nil {
			t.Errorf("Could not disconnect mongo: %s", err)
		}
	}

	if tm.Pool != nil && tm.Resource != nil {
		if err := tm.Pool.Purge(tm.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}
