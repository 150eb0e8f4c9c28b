package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Moleqa/internal/config"
	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db  *sql.DB
	now func() time.Time
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := postgresDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, now: time.Now}, nil
}

// postgresDSN appends certificate verification params when a CA path is set.
func postgresDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	const q = `INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`
	u := models.User{Username: in.Username, Password: in.Password}
	if err := c.db.QueryRowContext(ctx, q, in.Username, in.Password).Scan(&u.ID); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (c *DatabaseClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT id, username, password FROM users WHERE id = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, password FROM users WHERE username = $1 ORDER BY id ASC LIMIT 1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, username))
}

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Molecules

const moleculeColumns = `id, name, smiles, file_format, file_key, created_at, user_id`

func (c *DatabaseClient) CreateMolecule(ctx context.Context, in models.InsertMolecule) (*models.Molecule, error) {
	const q = `
		INSERT INTO molecules (name, smiles, file_format, file_key, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	m := models.Molecule{
		Name:       in.Name,
		Smiles:     in.Smiles,
		FileFormat: in.FileFormat,
		FileKey:    in.FileKey,
		CreatedAt:  models.Timestamp(c.now()),
		UserID:     in.UserID,
	}
	err := c.db.QueryRowContext(ctx, q,
		m.Name, m.Smiles, m.FileFormat, m.FileKey, m.CreatedAt, m.UserID).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("insert molecule: %w", err)
	}
	return &m, nil
}

func (c *DatabaseClient) GetMolecule(ctx context.Context, id int64) (*models.Molecule, error) {
	q := `SELECT ` + moleculeColumns + ` FROM molecules WHERE id = $1`
	return scanMolecule(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) GetMoleculeBySmiles(ctx context.Context, smiles string) (*models.Molecule, error) {
	q := `SELECT ` + moleculeColumns + ` FROM molecules WHERE smiles = $1 ORDER BY id ASC LIMIT 1`
	return scanMolecule(c.db.QueryRowContext(ctx, q, smiles))
}

func scanMolecule(row *sql.Row) (*models.Molecule, error) {
	var (
		m          models.Molecule
		fileFormat sql.NullString
		userID     sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.Name, &m.Smiles, &fileFormat, &m.FileKey, &m.CreatedAt, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fileFormat.Valid {
		m.FileFormat = &fileFormat.String
	}
	if userID.Valid {
		m.UserID = &userID.Int64
	}
	return &m, nil
}

// Analyses

const analysisColumns = `id, molecule_id, model_type, prediction_type, quantum_depth, results, created_at`

func (c *DatabaseClient) CreateAnalysis(ctx context.Context, in models.InsertAnalysis) (*models.Analysis, error) {
	const q = `
		INSERT INTO analyses (molecule_id, model_type, prediction_type, quantum_depth, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	results, err := json.Marshal(in.Results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	var depth *string
	if in.QuantumDepth != nil {
		depth = &in.QuantumDepth.Label
	}

	a := models.Analysis{
		MoleculeID:     in.MoleculeID,
		ModelType:      in.ModelType,
		PredictionType: in.PredictionType,
		QuantumDepth:   in.QuantumDepth,
		Results:        in.Results,
		CreatedAt:      models.Timestamp(c.now()),
	}
	err = c.db.QueryRowContext(ctx, q,
		a.MoleculeID, string(a.ModelType), string(a.PredictionType), depth, results, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}
	return &a, nil
}

func (c *DatabaseClient) GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	a, err := scanAnalysis(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (c *DatabaseClient) ListAnalysesByMolecule(ctx context.Context, moleculeID int64) ([]models.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE molecule_id = $1 ORDER BY id ASC`
	rows, err := c.db.QueryContext(ctx, q, moleculeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var (
		a         models.Analysis
		modelType string
		predType  string
		depth     sql.NullString
		results   []byte
	)
	if err := row.Scan(&a.ID, &a.MoleculeID, &modelType, &predType, &depth, &results, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ModelType = models.ModelType(modelType)
	a.PredictionType = models.PredictionType(predType)
	if depth.Valid {
		d, ok := models.ParseQuantumDepth(depth.String)
		if !ok {
			return nil, fmt.Errorf("analysis %d: stored quantum depth %q is unknown", a.ID, depth.String)
		}
		a.QuantumDepth = &d
	}
	if err := json.Unmarshal(results, &a.Results); err != nil {
		return nil, fmt.Errorf("analysis %d: decode results: %w", a.ID, err)
	}
	return &a, nil
}
