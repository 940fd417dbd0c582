package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

const minPasswordLength = 6

// Postgres is the self-hosted gateway: accounts live in the users table and
// id tokens are signed locally.
type Postgres struct {
	db     *sql.DB
	tokens *Tokens
}

func NewPostgres(db *sql.DB, tokens *Tokens) *Postgres {
	return &Postgres{db: db, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Postgres) SignIn(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, codeErr(CodeInvalidEmail)
	}
	if password == "" {
		return Account{}, codeErr(CodeMissingPassword)
	}

	var id, hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, codeErr(CodeEmailNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("identity: load user: %w", err)
	}

	ok, err := utils.VerifyPassword(password, hash)
	if err != nil {
		return Account{}, fmt.Errorf("identity: verify password: %w", err)
	}
	if !ok {
		return Account{}, codeErr(CodeInvalidPassword)
	}

	token, err := p.tokens.Issue(id, email)
	if err != nil {
		return Account{}, err
	}
	return Account{UserID: id, Email: email, IDToken: token}, nil
}

func (p *Postgres) CreateUser(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return codeErr(CodeInvalidEmail)
	}
	if password == "" {
		return codeErr(CodeMissingPassword)
	}
	if len(password) < minPasswordLength {
		return codeErr(CodeWeakPassword)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		uuid.New().String(), email, hash,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return codeErr(CodeEmailExists)
	}
	if err != nil {
		return fmt.Errorf("identity: insert user: %w", err)
	}
	return nil
}

var _ Gateway = (*Postgres)(nil)
