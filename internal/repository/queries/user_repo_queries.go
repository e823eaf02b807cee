package queries

const (
	QueryCreateUser = `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	QueryGetUserByID = `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1;
	`
	QueryGetUserByName = `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE name = $1;
	`
	QueryExistsUserByName  = `SELECT EXISTS (SELECT 1 FROM users WHERE name = $1);`
	QueryExistsUserByEmail = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`
	QueryCountUsers        = `SELECT count(*) FROM users;`

	QueryCountUsersByName = `SELECT count(*) FROM users WHERE name ILIKE $1;`
	QuerySearchUsers      = `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE name ILIKE $1
		ORDER BY name COLLATE "C", id
		LIMIT $2 OFFSET $3;
	`
	QueryUpdateUser = `
		UPDATE users
		SET name = $2, email = $3
		WHERE id = $1;
	`
)
