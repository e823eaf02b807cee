package queries

const (
	QueryCreateMessage = `
		INSERT INTO messages (channel_id, author_id, content, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	selectMessage = `
		SELECT m.id, m.channel_id, u.id, u.name, m.content, m.created_at, m.edited_at
		FROM messages m
		JOIN users u ON u.id = m.author_id
	`
	QueryGetMessage             = selectMessage + `WHERE m.channel_id = $1 AND m.id = $2;`
	QueryCountMessagesByChannel = `SELECT count(*) FROM messages WHERE channel_id = $1;`
	QueryListMessagesByChannel  = selectMessage + `
		WHERE m.channel_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3;
	`
	QueryUpdateMessage = `
		UPDATE messages
		SET content = $3, edited_at = $4
		WHERE channel_id = $1 AND id = $2;
	`
	QueryDeleteMessage = `DELETE FROM messages WHERE channel_id = $1 AND id = $2;`
)
