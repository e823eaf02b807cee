package queries

const (
	QueryCreateSession = `
		INSERT INTO sessions (user_id, created_at, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id;
	`
	QueryGetSession    = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1;`
	QueryDeleteSession = `
		WITH a AS (DELETE FROM access_tokens WHERE session_id = $1),
		     r AS (DELETE FROM refresh_tokens WHERE session_id = $1)
		DELETE FROM sessions WHERE id = $1;
	`
	QueryListSessionsByUser = `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC;
	`
	QueryDeleteOldestSessions = `
		WITH doomed AS (
			SELECT id FROM sessions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			OFFSET $2
		),
		a AS (DELETE FROM access_tokens WHERE session_id IN (SELECT id FROM doomed)),
		r AS (DELETE FROM refresh_tokens WHERE session_id IN (SELECT id FROM doomed))
		DELETE FROM sessions WHERE id IN (SELECT id FROM doomed);
	`

	QueryCreateAccessToken  = `INSERT INTO access_tokens (token, session_id, expires_at) VALUES ($1, $2, $3);`
	QueryGetAccessToken     = `SELECT token, session_id, expires_at FROM access_tokens WHERE token = $1;`
	QueryDeleteAccessToken  = `DELETE FROM access_tokens WHERE token = $1;`
	QueryCreateRefreshToken = `INSERT INTO refresh_tokens (token, session_id, expires_at) VALUES ($1, $2, $3);`
	QueryGetRefreshToken    = `SELECT token, session_id, expires_at FROM refresh_tokens WHERE token = $1;`
	QueryDeleteRefreshToken = `DELETE FROM refresh_tokens WHERE token = $1;`

	QueryDeleteExpired = `
		WITH expired AS (SELECT id FROM sessions WHERE expires_at <= $1),
		a AS (
			DELETE FROM access_tokens
			WHERE expires_at <= $1 OR session_id IN (SELECT id FROM expired)
			RETURNING 1
		),
		r AS (
			DELETE FROM refresh_tokens
			WHERE expires_at <= $1 OR session_id IN (SELECT id FROM expired)
			RETURNING 1
		),
		s AS (DELETE FROM sessions WHERE id IN (SELECT id FROM expired) RETURNING 1)
		SELECT (SELECT count(*) FROM a) + (SELECT count(*) FROM r) + (SELECT count(*) FROM s);
	`
)
