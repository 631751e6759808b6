package db

import (
	"context"
)

const createToken = `-- name: CreateToken :exec
INSERT INTO tokens (namespace, id, access_token, refresh_token, token_id, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (namespace, id) DO UPDATE SET
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    token_id = excluded.token_id,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at
`

type CreateTokenParams struct {
	Namespace    string
	ID           string
	AccessToken  string
	RefreshToken string
	TokenID      string
	ExpiresAt    int64
	UpdatedAt    int64
}

func (q *Queries) CreateToken(ctx context.Context, arg CreateTokenParams) error {
	_, err := q.db.ExecContext(ctx, createToken,
		arg.Namespace,
		arg.ID,
		arg.AccessToken,
		arg.RefreshToken,
		arg.TokenID,
		arg.ExpiresAt,
		arg.UpdatedAt,
	)
	return err
}

const getToken = `-- name: GetToken :one
SELECT namespace, id, access_token, refresh_token, token_id, expires_at, updated_at
FROM tokens
WHERE namespace = ? AND id = ?
`

type GetTokenParams struct {
	Namespace string
	ID        string
}

func (q *Queries) GetToken(ctx context.Context, arg GetTokenParams) (Token, error) {
	row := q.db.QueryRowContext(ctx, getToken, arg.Namespace, arg.ID)
	var i Token
	err := row.Scan(
		&i.Namespace,
		&i.ID,
		&i.AccessToken,
		&i.RefreshToken,
		&i.TokenID,
		&i.ExpiresAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteToken = `-- name: DeleteToken :exec
DELETE FROM tokens
WHERE namespace = ? AND id = ?
`

type DeleteTokenParams struct {
	Namespace string
	ID        string
}

func (q *Queries) DeleteToken(ctx context.Context, arg DeleteTokenParams) error {
	_, err := q.db.ExecContext(ctx, deleteToken, arg.Namespace, arg.ID)
	return err
}

const listTokens = `-- name: ListTokens :many
SELECT namespace, id, access_token, refresh_token, token_id, expires_at, updated_at
FROM tokens
ORDER BY namespace, id
`

func (q *Queries) ListTokens(ctx context.Context) ([]Token, error) {
	rows, err := q.db.QueryContext(ctx, listTokens)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Token
	for rows.Next() {
		var i Token
		if err := rows.Scan(
			&i.Namespace,
			&i.ID,
			&i.AccessToken,
			&i.RefreshToken,
			&i.TokenID,
			&i.ExpiresAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTokensBefore = `-- name: GetTokensBefore :many
SELECT namespace, id, access_token, refresh_token, token_id, expires_at, updated_at
FROM tokens
WHERE expires_at < ?
`

func (q *Queries) GetTokensBefore(ctx context.Context, expiresAt int64) ([]Token, error) {
	rows, err := q.db.QueryContext(ctx, getTokensBefore, expiresAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Token
	for rows.Next() {
		var i Token
		if err := rows.Scan(
			&i.Namespace,
			&i.ID,
			&i.AccessToken,
			&i.RefreshToken,
			&i.TokenID,
			&i.ExpiresAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTokensBefore = `-- name: DeleteTokensBefore :exec
DELETE FROM tokens
WHERE expires_at < ? AND refresh_token = ''
`

func (q *Queries) DeleteTokensBefore(ctx context.Context, expiresAt int64) error {
	_, err := q.db.ExecContext(ctx, deleteTokensBefore, expiresAt)
	return err
}

const getRefreshAlert = `-- name: GetRefreshAlert :one
SELECT namespace, id, alerted_at
FROM refresh_alerts
WHERE namespace = ? AND id = ?
`

type GetRefreshAlertParams struct {
	Namespace string
	ID        string
}

func (q *Queries) GetRefreshAlert(ctx context.Context, arg GetRefreshAlertParams) (RefreshAlert, error) {
	row := q.db.QueryRowContext(ctx, getRefreshAlert, arg.Namespace, arg.ID)
	var i RefreshAlert
	err := row.Scan(&i.Namespace, &i.ID, &i.AlertedAt)
	return i, err
}

const upsertRefreshAlert = `-- name: UpsertRefreshAlert :exec
INSERT INTO refresh_alerts (namespace, id, alerted_at)
VALUES (?, ?, ?)
ON CONFLICT (namespace, id) DO UPDATE SET alerted_at = excluded.alerted_at
`

type UpsertRefreshAlertParams struct {
	Namespace string
	ID        string
	AlertedAt int64
}

func (q *Queries) UpsertRefreshAlert(ctx context.Context, arg UpsertRefreshAlertParams) error {
	_, err := q.db.ExecContext(ctx, upsertRefreshAlert, arg.Namespace, arg.ID, arg.AlertedAt)
	return err
}
