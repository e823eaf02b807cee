package queries

const (
	// канал и членство владельца одной командой
	QueryCreateChannel = `
		WITH c AS (
			INSERT INTO channels (name, owner_id, is_public, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		)
		INSERT INTO channel_members (channel_id, user_id, role, joined_at)
		SELECT id, $2, 'OWNER', $4 FROM c
		RETURNING channel_id;
	`
	selectChannel = `
		SELECT c.id, c.name, u.id, u.name, c.is_public, c.created_at
		FROM channels c
		JOIN users u ON u.id = c.owner_id
	`
	QueryGetChannelByID      = selectChannel + `WHERE c.id = $1;`
	QueryGetChannelRoles     = `SELECT user_id, role FROM channel_members WHERE channel_id = $1;`
	QueryExistsChannelByName = `SELECT EXISTS (SELECT 1 FROM channels WHERE name = $1);`

	QueryCountChannelsForMember = `
		SELECT count(*)
		FROM channels c
		JOIN channel_members m ON m.channel_id = c.id
		WHERE m.user_id = $1 AND c.name ILIKE $2;
	`
	QueryListChannelsForMember = selectChannel + `
		JOIN channel_members m ON m.channel_id = c.id
		WHERE m.user_id = $1 AND c.name ILIKE $2
		ORDER BY c.name COLLATE "C", c.id
		LIMIT $3 OFFSET $4;
	`
	QueryCountPublicChannels = `SELECT count(*) FROM channels c WHERE c.is_public AND c.name ILIKE $1;`
	QueryListPublicChannels  = selectChannel + `
		WHERE c.is_public AND c.name ILIKE $1
		ORDER BY c.name COLLATE "C", c.id
		LIMIT $2 OFFSET $3;
	`
	QueryUpdateChannel = `
		UPDATE channels
		SET name = $2, is_public = $3
		WHERE id = $1;
	`
	// сообщения, приглашения и участники удаляются вместе с каналом
	QueryDeleteChannel = `
		WITH m AS (DELETE FROM messages WHERE channel_id = $1),
		     i AS (DELETE FROM channel_invitations WHERE channel_id = $1),
		     cm AS (DELETE FROM channel_members WHERE channel_id = $1)
		DELETE FROM channels WHERE id = $1;
	`

	QueryAddChannelMember = `
		INSERT INTO channel_members (channel_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	QueryUpdateChannelMemberRole = `
		UPDATE channel_members
		SET role = $3
		WHERE channel_id = $1 AND user_id = $2;
	`
	QueryRemoveChannelMember = `DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2;`
	QueryListChannelMembers  = `
		SELECT u.id, u.name, m.role, m.joined_at
		FROM channel_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.channel_id = $1
		ORDER BY m.joined_at, u.id;
	`
)
