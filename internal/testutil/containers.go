package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Database credentials used inside the containers
const (
	containerDatabase = "mapsdb"
	containerUser     = "mapsdb"
	containerPassword = "mapsdb-test-password"
)

type containerSpec struct {
	image string
	port  nat.Port
	env   map[string]string
	ready string
}

var containerSpecs = map[string]containerSpec{
	"postgres": {
		image: "postgres:16-alpine",
		port:  "5432/tcp",
		env: map[string]string{
			"POSTGRES_DB":       containerDatabase,
			"POSTGRES_USER":     containerUser,
			"POSTGRES_PASSWORD": containerPassword,
		},
		ready: "database system is ready to accept connections",
	},
	"mariadb": {
		image: "mariadb:11",
		port:  "3306/tcp",
		env: map[string]string{
			"MARIADB_DATABASE":      containerDatabase,
			"MARIADB_USER":          containerUser,
			"MARIADB_PASSWORD":      containerPassword,
			"MARIADB_ROOT_PASSWORD": containerPassword,
		},
		ready: "ready for connections",
	},
}

// DBContainer is a throwaway database server and the configuration that reaches it
type DBContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

// StartDatabase starts a postgres or mariadb container and waits until it
// accepts connections. The returned Config points at the mapped port.
func StartDatabase(ctx context.Context, dbType string) (*DBContainer, error) {
	spec, ok := containerSpecs[dbType]
	if !ok {
		return nil, fmt.Errorf("no container image for database type %q", dbType)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        spec.image,
			ExposedPorts: []string{string(spec.port)},
			Env:          spec.env,
			WaitingFor: wait.ForAll(
				wait.ForLog(spec.ready).WithOccurrence(1),
				wait.ForListeningPort(spec.port),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", dbType, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, spec.port)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container port: %w", err)
	}

	cfg := &config.Config{
		Port:              "3000",
		CORSOrigins:       "*",
		DBType:            dbType,
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        containerDatabase,
		DBUser:            containerUser,
		DBPassword:        containerPassword,
		DBConnectionLimit: 4,
		DBLogLevel:        "silent",
		JWTSecret:         "container-secret",
		ProjectVisibility: config.VisibilityAll,
		UsageWindowDays:   30,
		LogLevel:          "info",
		LogFormat:         "console",
	}
	return &DBContainer{Container: container, Config: cfg}, nil
}

// Env lists the environment variables that point the service at the container
func (d *DBContainer) Env() []string {
	c := d.Config
	return []string{
		"DB_TYPE=" + c.DBType,
		"DB_HOST=" + c.DBHost,
		"DB_PORT=" + c.DBPort,
		"DB_DATABASE=" + c.DBDatabase,
		"DB_USER=" + c.DBUser,
		"DB_PASSWORD=" + c.DBPassword,
	}
}

// Terminate stops and removes the container
func (d *DBContainer) Terminate(ctx context.Context) error {
	if d == nil || d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}
