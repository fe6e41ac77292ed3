package repository

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// testRepo разделяется всеми интеграционными тестами пакета; nil, если БД недоступна.
var testRepo *PostgresRepository

func TestMain(m *testing.M) {
	if dsn := os.Getenv("TEST_DATABASE_URI"); dsn != "" {
		repo, err := NewPostgresRepository(dsn)
		if err != nil {
			log.Fatalf("Could not connect to TEST_DATABASE_URI: %s", err)
		}
		testRepo = repo
		code := m.Run()
		repo.Close()
		os.Exit(code)
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		fmt.Println("docker is not available, skipping postgres integration tests:", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=vowswap",
			"POSTGRES_PASSWORD=vowswap",
			"POSTGRES_DB=vowswap",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	if err = resource.Expire(120); err != nil {
		log.Fatalf("Could not set resource expiration: %s", err)
	}

	dsn := fmt.Sprintf("postgres://vowswap:vowswap@%s/vowswap?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = time.Minute
	if err = pool.Retry(func() error {
		repo, err := NewPostgresRepository(dsn)
		if err != nil {
			return err
		}
		testRepo = repo
		return nil
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("Could not connect to postgres: %s", err)
	}

	code := m.Run()

	testRepo.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}
